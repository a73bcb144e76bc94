package sequencer

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"

	"go-measure/config"
	"go-measure/debug"
)

const (
	saveExt        = ".xml"
	timestampStamp = "2006-01-02_15-04-05"
)

// SaveInfo represents a saved project file (for listing)
type SaveInfo struct {
	Filename  string
	Name      string // parsed from filename (empty if unnamed)
	Timestamp time.Time
}

// ProjectsDir returns the projects directory path
func ProjectsDir() (string, error) {
	dir, err := config.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "projects"), nil
}

// ProjectDir returns the path to a specific project
func ProjectDir(projectName string) (string, error) {
	base, err := ProjectsDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, projectName), nil
}

// ListProjects returns all project folder names
func ListProjects() ([]string, error) {
	dir, err := ProjectsDir()
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}

	var projects []string
	for _, entry := range entries {
		if entry.IsDir() {
			projects = append(projects, entry.Name())
		}
	}

	sort.Strings(projects)
	return projects, nil
}

// ListSaves returns timestamped saves for a project, newest first
func ListSaves(projectName string) ([]SaveInfo, error) {
	dir, err := ProjectDir(projectName)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []SaveInfo{}, nil
		}
		return nil, err
	}

	var saves []SaveInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), saveExt) {
			continue
		}
		info, ok := parseSaveName(entry.Name())
		if !ok {
			continue
		}
		saves = append(saves, info)
	}

	// newest first
	sort.Slice(saves, func(i, j int) bool {
		return saves[i].Timestamp.After(saves[j].Timestamp)
	})

	return saves, nil
}

// parseSaveName splits 2024-01-15_14-30-00.xml or 2024-01-15_14-30-00_name.xml
func parseSaveName(filename string) (SaveInfo, bool) {
	baseName := strings.TrimSuffix(filename, saveExt)
	if len(baseName) < len(timestampStamp) {
		return SaveInfo{}, false
	}

	ts, err := time.Parse(timestampStamp, baseName[:len(timestampStamp)])
	if err != nil {
		return SaveInfo{}, false
	}

	name := ""
	if rest := baseName[len(timestampStamp):]; len(rest) > 1 && rest[0] == '_' {
		name = rest[1:]
	}
	return SaveInfo{Filename: filename, Name: name, Timestamp: ts}, true
}

// SaveProject writes s into the project folder under a new timestamped name
// and returns the file name.
func SaveProject(s *Sequence, projectName, saveName string) (string, error) {
	if projectName == "" {
		projectName = "untitled"
	}

	dir, err := ProjectDir(projectName)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.Wrap(err, "creating project directory")
	}

	filename := time.Now().Format(timestampStamp)
	if saveName != "" {
		filename += "_" + sanitizeFilename(saveName)
	}
	filename += saveExt

	if err := s.SaveFile(filepath.Join(dir, filename)); err != nil {
		return "", err
	}
	debug.Log("persist", "saved project %s as %s", projectName, filename)
	return filename, nil
}

// LoadProject loads a specific save (or most recent if filename empty)
func LoadProject(projectName, filename string) (*Sequence, error) {
	dir, err := ProjectDir(projectName)
	if err != nil {
		return nil, err
	}

	if filename == "" {
		saves, err := ListSaves(projectName)
		if err != nil {
			return nil, err
		}
		if len(saves) == 0 {
			return nil, errors.Errorf("no saves found in project %s", projectName)
		}
		filename = saves[0].Filename
	}

	s, err := LoadFile(filepath.Join(dir, filename))
	if err != nil {
		return nil, err
	}
	debug.Log("persist", "loaded project %s from %s", projectName, filename)
	return s, nil
}

// DeleteSave deletes a specific save file
func DeleteSave(projectName, filename string) error {
	dir, err := ProjectDir(projectName)
	if err != nil {
		return err
	}
	return os.Remove(filepath.Join(dir, filename))
}

// RenameSave renames a save file (changes the name part, keeps timestamp)
func RenameSave(projectName, oldFilename, newName string) (string, error) {
	dir, err := ProjectDir(projectName)
	if err != nil {
		return "", err
	}

	info, ok := parseSaveName(oldFilename)
	if !ok {
		return "", errors.Errorf("invalid save filename %q", oldFilename)
	}

	newFilename := info.Timestamp.Format(timestampStamp)
	if newName != "" {
		newFilename += "_" + sanitizeFilename(newName)
	}
	newFilename += saveExt

	err = os.Rename(filepath.Join(dir, oldFilename), filepath.Join(dir, newFilename))
	return newFilename, err
}

// sanitizeFilename removes/replaces characters that are problematic in filenames
func sanitizeFilename(name string) string {
	return strings.NewReplacer(
		" ", "-", "/", "-", "\\", "-", ":", "-",
		"*", "", "?", "", "\"", "", "<", "", ">", "", "|", "",
	).Replace(name)
}

// DeleteProject deletes entire project folder
func DeleteProject(name string) error {
	dir, err := ProjectDir(name)
	if err != nil {
		return err
	}
	return os.RemoveAll(dir)
}
