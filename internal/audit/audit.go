// Package audit reports stored media that no content record references,
// and references that point at files missing from storage.
package audit

import (
	"context"
	"sort"
	"time"

	"github.com/brueckenwerk/cms/internal/media"
)

// Missing is a key referenced by content but absent from storage.
type Missing struct {
	Key    string        `json:"key"`
	UsedBy []media.Usage `json:"used_by"`
}

// Report is the result of one scan.
type Report struct {
	Checked    int          `json:"checked"`
	Orphans    []media.File `json:"orphans"`
	OrphanSize int64        `json:"orphan_bytes"`
	Missing    []Missing    `json:"missing"`
	ScannedAt  time.Time    `json:"scanned_at"`
}

// Library is satisfied by *media.Service.
type Library interface {
	Files(ctx context.Context) ([]media.File, error)
	Usage(ctx context.Context) (media.UsageIndex, error)
}

// Run scans the library. It only reports; nothing is deleted.
func Run(ctx context.Context, lib Library) (Report, error) {
	files, err := lib.Files(ctx)
	if err != nil {
		return Report{}, err
	}
	usage, err := lib.Usage(ctx)
	if err != nil {
		return Report{}, err
	}

	rep := Report{Checked: len(files), Orphans: []media.File{}, Missing: []Missing{}, ScannedAt: time.Now().UTC()}
	stored := make(map[string]bool, len(files))
	for _, f := range files {
		stored[f.Key] = true
		if len(f.UsedBy) == 0 {
			rep.Orphans = append(rep.Orphans, f)
			rep.OrphanSize += f.Size
		}
	}
	for key, used := range usage {
		if !stored[key] {
			rep.Missing = append(rep.Missing, Missing{Key: key, UsedBy: used})
		}
	}
	sort.Slice(rep.Missing, func(i, j int) bool { return rep.Missing[i].Key < rep.Missing[j].Key })
	return rep, nil
}
