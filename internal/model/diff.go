package model

import (
	"sort"
	"time"
)

// ChangeKind classifies how a file changed between two runs.
type ChangeKind string

const (
	// ChangeAdded means the file is only in the current run.
	ChangeAdded ChangeKind = "added"

	// ChangeRemoved means the file is only in the previous run.
	ChangeRemoved ChangeKind = "removed"

	// ChangeSmaller means the minified output shrank.
	ChangeSmaller ChangeKind = "smaller"

	// ChangeLarger means the minified output grew.
	ChangeLarger ChangeKind = "larger"

	// ChangeSame means the minified size did not change.
	ChangeSame ChangeKind = "same"

	// ChangeFailed means the file failed in the current run.
	ChangeFailed ChangeKind = "failed"
)

// FileDiff is the change of one file between two runs.
type FileDiff struct {
	Name     string     `json:"name"`
	Previous int64      `json:"previous_size"`
	Current  int64      `json:"current_size"`
	Delta    int64      `json:"delta"`
	Kind     ChangeKind `json:"kind"`
}

// RunDiff is the comparison of two runs.
type RunDiff struct {
	PreviousID      int64      `json:"previous_id"`
	CurrentID       int64      `json:"current_id"`
	PreviousStarted time.Time  `json:"previous_started_at"`
	CurrentStarted  time.Time  `json:"current_started_at"`
	Previous        Summary    `json:"previous"`
	Current         Summary    `json:"current"`
	Files           []FileDiff `json:"files"`
}

// Compare compares the minified sizes of two runs file by file.
// Skipped files are ignored. Files are sorted by name.
func Compare(previous, current *RunReport) *RunDiff {
	d := &RunDiff{
		PreviousID:      previous.ID,
		CurrentID:       current.ID,
		PreviousStarted: previous.StartedAt,
		CurrentStarted:  current.StartedAt,
		Previous:        NewSummary(previous),
		Current:         NewSummary(current),
		Files:           make([]FileDiff, 0),
	}

	seen := make(map[string]struct{}, len(current.Files))
	for _, cur := range current.Files {
		if cur.Status == StatusSkipped {
			continue
		}
		seen[cur.Name] = struct{}{}

		fd := FileDiff{Name: cur.Name, Current: cur.MinifiedSize}
		prev, ok := previous.File(cur.Name)
		switch {
		case cur.Status == StatusFailed:
			fd.Kind = ChangeFailed
			if ok && prev.Succeeded() {
				fd.Previous = prev.MinifiedSize
			}
		case !ok || prev.Status == StatusSkipped:
			fd.Kind = ChangeAdded
			fd.Delta = cur.MinifiedSize
		default:
			fd.Previous = prev.MinifiedSize
			fd.Delta = cur.MinifiedSize - prev.MinifiedSize
			fd.Kind = kindOf(fd.Delta)
			if !prev.Succeeded() {
				// The previous run failed; there is nothing to compare with.
				fd.Kind = ChangeAdded
			}
		}
		d.Files = append(d.Files, fd)
	}

	for _, prev := range previous.Files {
		if prev.Status == StatusSkipped {
			continue
		}
		if _, ok := seen[prev.Name]; ok {
			continue
		}
		d.Files = append(d.Files, FileDiff{
			Name:     prev.Name,
			Previous: prev.MinifiedSize,
			Delta:    -prev.MinifiedSize,
			Kind:     ChangeRemoved,
		})
	}

	sort.Slice(d.Files, func(i, j int) bool { return d.Files[i].Name < d.Files[j].Name })
	return d
}

func kindOf(delta int64) ChangeKind {
	switch {
	case delta < 0:
		return ChangeSmaller
	case delta > 0:
		return ChangeLarger
	default:
		return ChangeSame
	}
}

// Count returns the number of files with the given change.
func (d *RunDiff) Count(kind ChangeKind) int {
	n := 0
	for _, f := range d.Files {
		if f.Kind == kind {
			n++
		}
	}
	return n
}

// Changed returns the files whose kind is not ChangeSame.
func (d *RunDiff) Changed() []FileDiff {
	var changed []FileDiff
	for _, f := range d.Files {
		if f.Kind != ChangeSame {
			changed = append(changed, f)
		}
	}
	return changed
}

// MinifiedDelta returns the change of the total minified bytes.
func (d *RunDiff) MinifiedDelta() int64 {
	return d.Current.MinifiedBytes - d.Previous.MinifiedBytes
}
