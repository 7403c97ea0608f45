package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"punchclock/internal/core/model"
)

const (
	weekFileName    = "week.yaml"
	sessionFileName = "session.yaml"

	anchorLayout = "2006-01-02"
)

// Store persists the week record and the session snapshot as YAML files
// under the application's config directory. It holds no business logic:
// unreadable or unparseable files count as absent, write failures are
// returned to the caller.
type Store struct {
	dir string
}

// Open resolves the OS config directory for appName and returns a store
// rooted there.
func Open(appName string) (*Store, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("resolve user config dir: %w", err)
	}
	return OpenAt(filepath.Join(configDir, appName)), nil
}

// OpenAt returns a store rooted at an explicit directory.
func OpenAt(dir string) *Store {
	return &Store{dir: dir}
}

type yamlWeek struct {
	WeekAnchor string `yaml:"week_anchor"`
	Monday     int64  `yaml:"monday_seconds"`
	Tuesday    int64  `yaml:"tuesday_seconds"`
	Wednesday  int64  `yaml:"wednesday_seconds"`
	Thursday   int64  `yaml:"thursday_seconds"`
	Friday     int64  `yaml:"friday_seconds"`
	Saturday   int64  `yaml:"saturday_seconds"`
	Sunday     int64  `yaml:"sunday_seconds"`
}

type yamlSession struct {
	Active             bool  `yaml:"active"`
	OnBreak            bool  `yaml:"on_break"`
	SessionStartMillis int64 `yaml:"session_start_ms"`
	BankedSeconds      int64 `yaml:"banked_seconds"`
	BreakStartMillis   int64 `yaml:"break_start_ms"`
}

// LoadWeekRecord returns the stored record when its anchor equals weekAnchor.
// Otherwise it writes and returns a fresh zeroed record for weekAnchor and
// reports replaced=true; the caller must then also clear session state.
func (store *Store) LoadWeekRecord(weekAnchor time.Time) (model.WeekRecord, bool, error) {
	rawData, err := os.ReadFile(store.weekPath())
	if err == nil {
		var fileData yamlWeek
		if yaml.Unmarshal(rawData, &fileData) == nil {
			stored, parseErr := time.ParseInLocation(anchorLayout, fileData.WeekAnchor, weekAnchor.Location())
			if parseErr == nil && stored.Equal(weekAnchor) {
				return weekFromYaml(fileData, stored), false, nil
			}
		}
	}

	record := model.NewWeekRecord(weekAnchor)
	if err := store.SaveWeekRecord(record); err != nil {
		return record, true, err
	}
	return record, true, nil
}

// SaveWeekRecord overwrites the stored week record.
func (store *Store) SaveWeekRecord(record model.WeekRecord) error {
	fileData := yamlWeek{
		WeekAnchor: record.Anchor.Format(anchorLayout),
		Monday:     record.DailySeconds[model.Monday],
		Tuesday:    record.DailySeconds[model.Tuesday],
		Wednesday:  record.DailySeconds[model.Wednesday],
		Thursday:   record.DailySeconds[model.Thursday],
		Friday:     record.DailySeconds[model.Friday],
		Saturday:   record.DailySeconds[model.Saturday],
		Sunday:     record.DailySeconds[model.Sunday],
	}
	if err := store.writeYaml(store.weekPath(), fileData); err != nil {
		return fmt.Errorf("write week record: %w", err)
	}
	return nil
}

// ResetWeekRecord replaces the stored record with a fresh zeroed record for
// weekAnchor, regardless of prior contents.
func (store *Store) ResetWeekRecord(weekAnchor time.Time) (model.WeekRecord, error) {
	record := model.NewWeekRecord(weekAnchor)
	if err := store.SaveWeekRecord(record); err != nil {
		return record, err
	}
	return record, nil
}

// LoadSessionSnapshot returns the stored snapshot. A missing or unparseable
// file yields the inactive snapshot.
func (store *Store) LoadSessionSnapshot() (model.SessionSnapshot, error) {
	rawData, err := os.ReadFile(store.sessionPath())
	if err != nil {
		return model.SessionSnapshot{}, nil
	}

	var fileData yamlSession
	if err := yaml.Unmarshal(rawData, &fileData); err != nil {
		return model.SessionSnapshot{}, nil
	}
	if !fileData.Active {
		return model.SessionSnapshot{}, nil
	}

	return model.SessionSnapshot{
		Active:             true,
		OnBreak:            fileData.OnBreak,
		SessionStartMillis: fileData.SessionStartMillis,
		BankedSeconds:      fileData.BankedSeconds,
		BreakStartMillis:   fileData.BreakStartMillis,
	}, nil
}

// SaveSessionSnapshot overwrites the stored snapshot.
func (store *Store) SaveSessionSnapshot(snapshot model.SessionSnapshot) error {
	fileData := yamlSession{
		Active:             snapshot.Active,
		OnBreak:            snapshot.OnBreak,
		SessionStartMillis: snapshot.SessionStartMillis,
		BankedSeconds:      snapshot.BankedSeconds,
		BreakStartMillis:   snapshot.BreakStartMillis,
	}
	if err := store.writeYaml(store.sessionPath(), fileData); err != nil {
		return fmt.Errorf("write session snapshot: %w", err)
	}
	return nil
}

// ClearSessionSnapshot resets the stored snapshot to inactive.
func (store *Store) ClearSessionSnapshot() error {
	return store.SaveSessionSnapshot(model.SessionSnapshot{})
}

func (store *Store) weekPath() string {
	return filepath.Join(store.dir, weekFileName)
}

func (store *Store) sessionPath() string {
	return filepath.Join(store.dir, sessionFileName)
}

func (store *Store) writeYaml(path string, fileData any) error {
	if err := os.MkdirAll(store.dir, 0o755); err != nil {
		return fmt.Errorf("create store directory: %w", err)
	}
	serialized, err := yaml.Marshal(fileData)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, serialized, 0o644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}

func weekFromYaml(fileData yamlWeek, anchor time.Time) model.WeekRecord {
	record := model.NewWeekRecord(anchor)
	record.DailySeconds[model.Monday] = fileData.Monday
	record.DailySeconds[model.Tuesday] = fileData.Tuesday
	record.DailySeconds[model.Wednesday] = fileData.Wednesday
	record.DailySeconds[model.Thursday] = fileData.Thursday
	record.DailySeconds[model.Friday] = fileData.Friday
	record.DailySeconds[model.Saturday] = fileData.Saturday
	record.DailySeconds[model.Sunday] = fileData.Sunday
	return record
}
