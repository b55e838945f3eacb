package entry

import (
	"fmt"
	"time"

	"github.com/alcortesm/physiofit-radar/app/schedule"
)

// file is the on-disk format of the store.
type file struct {
	Entries []fileEntry `yaml:"entries"`
}

type fileEntry struct {
	ID       string    `yaml:"id"`
	UniqueID string    `yaml:"unique_id"`
	Title    string    `yaml:"title"`
	Version  int       `yaml:"version"`
	Created  time.Time `yaml:"created"`
	Schedule fileWeek  `yaml:"schedule"`
}

// fileWeek keeps the weekdays in calendar order in the file.
type fileWeek struct {
	Monday    fileDay `yaml:"monday"`
	Tuesday   fileDay `yaml:"tuesday"`
	Wednesday fileDay `yaml:"wednesday"`
	Thursday  fileDay `yaml:"thursday"`
	Friday    fileDay `yaml:"friday"`
	Saturday  fileDay `yaml:"saturday"`
	Sunday    fileDay `yaml:"sunday"`
}

type fileDay struct {
	Enabled bool           `yaml:"enabled"`
	Open    schedule.Clock `yaml:"open"`
	Close   schedule.Clock `yaml:"close"`
}

func (w *fileWeek) days() [schedule.DaysPerWeek]*fileDay {
	return [schedule.DaysPerWeek]*fileDay{
		&w.Monday,
		&w.Tuesday,
		&w.Wednesday,
		&w.Thursday,
		&w.Friday,
		&w.Saturday,
		&w.Sunday,
	}
}

func toFileEntry(e Entry) fileEntry {
	result := fileEntry{
		ID:       string(e.ID),
		UniqueID: e.UniqueID,
		Title:    e.Title,
		Version:  e.Version,
		Created:  e.Created,
	}

	for d, fd := range result.Schedule.days() {
		day := e.Schedule.Day(schedule.Weekday(d))
		*fd = fileDay{
			Enabled: day.Enabled,
			Open:    day.Open,
			Close:   day.Close,
		}
	}

	return result
}

func (fe fileEntry) entry() (Entry, error) {
	if fe.UniqueID == "" {
		return Entry{}, fmt.Errorf("missing unique_id")
	}

	if fe.Version != Version {
		return Entry{}, fmt.Errorf("unsupported version %d", fe.Version)
	}

	result := Entry{
		ID:       ID(fe.ID),
		UniqueID: fe.UniqueID,
		Title:    fe.Title,
		Version:  fe.Version,
		Created:  fe.Created,
	}

	for d, fd := range fe.Schedule.days() {
		result.Schedule = result.Schedule.With(schedule.Weekday(d), schedule.Day{
			Enabled: fd.Enabled,
			Open:    fd.Open,
			Close:   fd.Close,
		})
	}

	return result, nil
}
