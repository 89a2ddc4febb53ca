package logging

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/afero"

	"github.com/sokolawesome/mediasession/internal/config"
)

func TestSetup(t *testing.T) {
	Convey("Given in-memory storage", t, func() {
		fs := afero.NewMemMapFs()
		var out bytes.Buffer

		Convey("An unknown level falls back to info", func() {
			log, closeLog, err := Setup(fs, config.LogSettings{Level: "chatty"}, &out)
			So(err, ShouldBeNil)
			defer closeLog()
			So(log.GetLevel(), ShouldEqual, logrus.InfoLevel)

			log.Debug("hidden")
			log.Info("shown")
			So(out.String(), ShouldNotContainSubstring, "hidden")
			So(out.String(), ShouldContainSubstring, "shown")
		})

		Convey("JSON output is used when requested", func() {
			log, _, err := Setup(fs, config.LogSettings{Level: "debug", JSON: true}, &out)
			So(err, ShouldBeNil)
			log.WithField("event", "Next").Debug("remote request")
			So(out.String(), ShouldContainSubstring, `"event":"Next"`)
		})

		Convey("A log file replaces the writer", func() {
			settings := config.LogSettings{Level: "info", File: "/var/log/mediasession/session.log"}
			log, closeLog, err := Setup(fs, settings, &out)
			So(err, ShouldBeNil)
			log.Info("to file")
			So(closeLog(), ShouldBeNil)

			data, err := afero.ReadFile(fs, settings.File)
			So(err, ShouldBeNil)
			So(string(data), ShouldContainSubstring, "to file")
			So(out.Len(), ShouldEqual, 0)
		})
	})
}
