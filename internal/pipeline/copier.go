package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/joe/romio/pkg/archive"
	"github.com/joe/romio/pkg/fileops"
	"github.com/joe/romio/pkg/spec"
)

// Exported variables.
var (
	ErrEmptyJob = errors.New("copy job has no entries")
)

// EntryRef names one source item for a copy job.
type EntryRef struct {
	// Source is an archive path or a loose file path.
	Source string
	// Entry is the name inside the Source archive. Empty for a loose file.
	Entry string
	// Target is the name in the destination. Empty keeps the source name.
	Target string
}

func (r EntryRef) targetName() string {
	switch {
	case r.Target != "":
		return r.Target
	case r.Entry != "":
		return r.Entry
	default:
		return filepath.Base(r.Source)
	}
}

// CopyJob rebuilds one destination container or directory from entries
// of any number of sources.
type CopyJob struct {
	Destination string
	Entries     []EntryRef
	// Overwrite replaces an existing destination. Otherwise the job is skipped.
	Overwrite bool
}

// Copier runs CopyJobs. Entries are copied in the job's order, except that
// entries of one archive are read in that archive's physical order.
type Copier struct {
	Context context.Context //nolint:containedctx // Passed to the external tools of process-backed archives
	Options archive.Options
	Logger  zerolog.Logger
}

// Items turns jobs into pool items, one per destination.
func Items(jobs []CopyJob) []Item {
	items := make([]Item, 0, len(jobs))
	for _, job := range jobs {
		items = append(items, Item{Path: job.Destination})
	}

	return items
}

// Work returns a WorkFunc running jobs[task.Index].
func (c *Copier) Work(jobs []CopyJob) WorkFunc {
	return func(task Task) error {
		return c.Copy(task, jobs[task.Index])
	}
}

// Copy builds job.Destination. A failed job removes its partial destination.
func (c *Copier) Copy(task Task, job CopyJob) (err error) {
	if len(job.Entries) == 0 {
		return ErrEmptyJob
	}

	if !job.Overwrite {
		if _, statErr := os.Stat(job.Destination); statErr == nil {
			return Skip("destination exists")
		}
	}

	opts := c.Options
	opts.Names = nil

	destination, err := archive.CreateDestination(job.Destination, opts)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", job.Destination, err)
	}

	defer func() {
		closeErr := destination.Close()
		if err == nil && closeErr != nil {
			err = fmt.Errorf("failed to finish %s: %w", job.Destination, closeErr)
		}

		if err != nil && destination.Kind() != archive.KindUnknown {
			_ = os.Remove(destination.Path())
		}
	}()

	for _, group := range groupBySource(job.Entries) {
		err = c.copyGroup(task, destination, group)
		if err != nil {
			return err
		}
	}

	return nil
}

// copyGroup copies the entries of one source. An entry mapped to several
// targets is read once per target, in successive passes over the archive.
func (c *Copier) copyGroup(task Task, destination archive.Destination, refs []EntryRef) error {
	if refs[0].Entry == "" {
		for _, ref := range refs {
			err := c.copyLoose(task, destination, ref)
			if err != nil {
				return err
			}
		}

		return nil
	}

	for pending := refs; len(pending) > 0; {
		var pass, later []EntryRef

		seen := make(map[string]bool, len(pending))

		for _, ref := range pending {
			name := archive.NormalizeName(ref.Entry)
			if seen[name] {
				later = append(later, ref)
				continue
			}

			seen[name] = true
			pass = append(pass, ref)
		}

		err := c.copyPass(task, destination, pass)
		if err != nil {
			return err
		}

		pending = later
	}

	return nil
}

// copyPass copies refs naming distinct entries of one archive, in the
// archive's physical order.
func (c *Copier) copyPass(task Task, destination archive.Destination, refs []EntryRef) error {
	targets := make(map[string]string, len(refs))
	names := make([]string, 0, len(refs))

	for _, ref := range refs {
		name := archive.NormalizeName(ref.Entry)
		targets[name] = ref.targetName()
		names = append(names, name)
	}

	opts := c.Options
	opts.Names = names

	source, err := archive.OpenSource(c.context(), refs[0].Source, opts)
	if err != nil {
		return fmt.Errorf("failed to open archive %s: %w", refs[0].Source, err)
	}

	defer func() {
		_ = source.Close()
	}()

	for {
		entry, err := source.Next()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return err
		}

		err = c.copyOne(task, destination, entry, targets[entry.RelativeName()])
		if err != nil {
			return err
		}
	}

	return source.Close()
}

func (c *Copier) copyLoose(task Task, destination archive.Destination, ref EntryRef) error {
	source, err := spec.OpenFile(ref.Source)
	if err != nil {
		return err
	}

	return c.copyOne(task, destination, source, ref.targetName())
}

// copyOne copies one source into a new destination entry and closes both.
func (c *Copier) copyOne(task Task, destination archive.Destination, source spec.SourceSpec, name string) error {
	defer func() {
		_ = source.Close()
	}()

	entry, err := destination.CreateEntry(name, source)
	if err != nil {
		return err
	}

	stats, err := fileops.Copy(entry, source, task.Progress)
	if err != nil {
		_ = entry.Close()
		return err
	}

	err = entry.Close()
	if err != nil {
		return fmt.Errorf("failed to finish %s: %w", entry.DisplayName(), err)
	}

	c.Logger.Debug().
		Str("from", source.DisplayName()).
		Str("to", entry.DisplayName()).
		Int64("bytes", stats.BytesCopied).
		Dur("read", stats.ReadTime).
		Dur("write", stats.WriteTime).
		Msg("entry copied")

	return source.Close()
}

func (c *Copier) context() context.Context {
	if c.Context == nil {
		return context.Background()
	}

	return c.Context
}

// groupBySource keeps the first-seen order of sources and collects every
// entry of a source into its group.
func groupBySource(refs []EntryRef) [][]EntryRef {
	index := map[string]int{}

	var groups [][]EntryRef

	for _, ref := range refs {
		key := ref.Source
		if ref.Entry == "" {
			key = "\x00loose"
		}

		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, nil)
		}

		groups[i] = append(groups[i], ref)
	}

	return groups
}
