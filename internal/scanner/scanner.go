package scanner

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/afero"
)

type MusicFile struct {
	Path     string
	Name     string
	Dir      string
	Size     int64
	Modified int64
}

// Title is the file name without its extension, used until the player
// reports real metadata.
func (f MusicFile) Title() string {
	return strings.TrimSuffix(f.Name, filepath.Ext(f.Name))
}

var audioExts = map[string]bool{
	".mp3":  true,
	".flac": true,
	".ogg":  true,
	".wav":  true,
	".m4a":  true,
	".aac":  true,
	".wma":  true,
	".opus": true,
}

var coverNames = []string{"cover.jpg", "cover.png", "folder.jpg", "folder.png", "front.jpg"}

// ScanDirectories walks dirs and returns every audio file sorted by path.
// Missing directories are skipped and files reachable from more than one
// directory are listed once.
func ScanDirectories(fs afero.Fs, dirs []string) ([]MusicFile, error) {
	var files []MusicFile

	for _, dir := range lo.Uniq(lo.Map(dirs, func(d string, _ int) string { return expandPath(d) })) {
		if exists, _ := afero.DirExists(fs, dir); !exists {
			continue
		}

		err := afero.Walk(fs, dir, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return nil
			}

			if info.IsDir() {
				return nil
			}

			ext := strings.ToLower(filepath.Ext(path))
			if !audioExts[ext] {
				return nil
			}

			files = append(files, MusicFile{
				Path:     path,
				Name:     info.Name(),
				Dir:      filepath.Dir(path),
				Size:     info.Size(),
				Modified: info.ModTime().Unix(),
			})

			return nil
		})

		if err != nil {
			return nil, err
		}
	}

	files = lo.UniqBy(files, func(f MusicFile) string { return f.Path })
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// FindCover returns the first conventional artwork file next to track.
func FindCover(fs afero.Fs, track string) (string, bool) {
	dir := filepath.Dir(track)
	return lo.Find(lo.Map(coverNames, func(name string, _ int) string {
		return filepath.Join(dir, name)
	}), func(candidate string) bool {
		exists, _ := afero.Exists(fs, candidate)
		return exists
	})
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
