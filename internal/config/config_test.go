package config

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/afero"
)

const path = "/home/me/.config/mediasession/config.yml"

func TestLoad(t *testing.T) {
	Convey("Given an empty filesystem", t, func() {
		fs := afero.NewMemMapFs()

		Convey("Load falls back to the defaults", func() {
			cfg, err := Load(New(fs, path))
			So(err, ShouldBeNil)
			So(*cfg, ShouldResemble, Default())
		})
	})

	Convey("Given a partial config file", t, func() {
		fs := afero.NewMemMapFs()
		So(afero.WriteFile(fs, path, []byte(`
session:
  name: custom
  supported_uri_schemes: [file, https]
log:
  level: debug
`), 0o644), ShouldBeNil)

		Convey("Values from the file win and the rest keep their defaults", func() {
			cfg, err := Load(New(fs, path))
			So(err, ShouldBeNil)
			So(cfg.Session.Name, ShouldEqual, "custom")
			So(cfg.Session.SupportedURISchemes, ShouldResemble, []string{"file", "https"})
			So(cfg.Session.Identity, ShouldEqual, Default().Session.Identity)
			So(cfg.Log.Level, ShouldEqual, "debug")
			So(cfg.Hotkeys, ShouldResemble, Default().Hotkeys)
		})
	})

	Convey("Given a broken config file", t, func() {
		fs := afero.NewMemMapFs()
		So(afero.WriteFile(fs, path, []byte("session: [unclosed"), 0o644), ShouldBeNil)

		Convey("Load reports the parse error", func() {
			_, err := Load(New(fs, path))
			So(err, ShouldNotBeNil)
		})
	})
}

// The environment is set for the whole test, so it gets its own function.
func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("MEDIASESSION_SESSION_IDENTITY", "From Env")
	t.Setenv("MEDIASESSION_LOG_JSON", "true")

	Convey("Given environment overrides and no config file", t, func() {
		fs := afero.NewMemMapFs()

		Convey("Environment variables override defaults", func() {
			cfg, err := Load(New(fs, path))
			So(err, ShouldBeNil)
			So(cfg.Session.Identity, ShouldEqual, "From Env")
			So(cfg.Log.JSON, ShouldBeTrue)
			So(cfg.Session.Name, ShouldEqual, Default().Session.Name)
		})
	})
}

func TestWriteDefault(t *testing.T) {
	Convey("Given an empty filesystem", t, func() {
		fs := afero.NewMemMapFs()

		Convey("When writing the default config", func() {
			err := WriteDefault(fs, path)
			So(err, ShouldBeNil)

			Convey("Then loading it yields the defaults", func() {
				cfg, err := Load(New(fs, path))
				So(err, ShouldBeNil)
				So(*cfg, ShouldResemble, Default())
			})

			Convey("And writing again does not overwrite it", func() {
				So(WriteDefault(fs, path), ShouldNotBeNil)
			})
		})
	})
}
