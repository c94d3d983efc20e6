package pathstore

import (
	"context"
	"fmt"
	"time"

	"github.com/pennsieve/cypherqa/types"
	"github.com/yaoapp/kun/log"
)

// PopulateReport the outcome of one population batch
type PopulateReport struct {
	Collection string        `json:"collection"`
	Requested  int           `json:"requested"`
	Added      int           `json:"added"`
	Failed     int           `json:"failed"`
	Errors     []string      `json:"errors,omitempty"`
	Duration   time.Duration `json:"duration"`
}

func (r *PopulateReport) fail(format string, args ...interface{}) {
	r.Failed++
	msg := fmt.Sprintf(format, args...)
	r.Errors = append(r.Errors, msg)
	log.With(log.F{"collection": r.Collection}).Warn("[Populate] %s", msg)
}

// Populate samples count instance paths, describes and embeds them and adds
// them to the collection. rebuild drops the collection first. A failing item
// is logged and skipped; the batch carries on.
func (s *Store) Populate(ctx context.Context, name string, count int, rebuild bool) (*PopulateReport, error) {
	if s.graph == nil || s.describer == nil {
		return nil, fmt.Errorf("populate requires a graph store and a describer")
	}

	start := time.Now()
	report := &PopulateReport{Collection: name, Requested: count}

	if err := s.prepare(ctx, name, rebuild); err != nil {
		return nil, err
	}

	if count <= 0 {
		return report, nil
	}

	ids, err := s.sampleNodes(ctx, count)
	if err != nil {
		return nil, err
	}
	log.Info("[Populate] sampled %d of %d requested nodes for %s", len(ids), count, name)

	backup := s.openBackup()
	if backup != nil {
		defer backup.Close()
	}

	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			report.Duration = time.Since(start)
			return report, err
		}

		s.populateOne(ctx, name, id, i, backup, report)

		if err := s.throttle(ctx, i, len(ids)); err != nil {
			report.Duration = time.Since(start)
			return report, err
		}
	}

	report.Duration = time.Since(start)
	log.With(log.F{"collection": name, "added": report.Added, "failed": report.Failed}).
		Info("[Populate] done in %s", report.Duration)
	return report, nil
}

func (s *Store) populateOne(ctx context.Context, name, id string, i int, backup *backupWriter, report *PopulateReport) {
	path, err := s.instancePath(ctx, id)
	if err != nil {
		report.fail("item %d: %s", i+1, err.Error())
		return
	}

	description, err := s.describer.Describe(ctx, path)
	if err != nil {
		report.fail("item %d: %s", i+1, err.Error())
		return
	}

	if backup != nil {
		if err := backup.Write(path, description); err != nil {
			log.Warn("[Populate] item %d: failed to write backup: %s", i+1, err.Error())
		}
	}

	if err := s.add(ctx, name, path, description); err != nil {
		report.fail("item %d: %s", i+1, err.Error())
		return
	}

	report.Added++
	log.Debug("[Populate] item %d: %s", i+1, path)
}

// Restore adds the pairs of a backup log without calling the description
// model. Descriptions are embedded in batches of ThrottleEvery entries
// (DefaultRestoreBatch when unset); a failing batch is retried entry by entry
// so one bad entry only skips itself.
func (s *Store) Restore(ctx context.Context, name string, file string) (*PopulateReport, error) {
	entries, err := ReadBackup(file)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	report := &PopulateReport{Collection: name, Requested: len(entries)}
	if err := s.prepare(ctx, name, false); err != nil {
		return nil, err
	}

	size := s.options.ThrottleEvery
	if size <= 0 {
		size = DefaultRestoreBatch
	}

	for from := 0; from < len(entries); from += size {
		if err := ctx.Err(); err != nil {
			report.Duration = time.Since(start)
			return report, err
		}

		to := min(from+size, len(entries))
		records := s.embedEntries(ctx, entries[from:to], from, report)
		if len(records) > 0 {
			if err := s.upsert(ctx, name, records); err != nil {
				for _, record := range records {
					report.fail("entry %q: %s", record.Path, err.Error())
				}
			} else {
				report.Added += len(records)
			}
		}

		if err := s.throttle(ctx, to-1, len(entries)); err != nil {
			report.Duration = time.Since(start)
			return report, err
		}
	}

	report.Duration = time.Since(start)
	log.With(log.F{"collection": name, "added": report.Added, "failed": report.Failed}).
		Info("[Populate] restored from %s in %s", file, report.Duration)
	return report, nil
}

// embedEntries embeds one batch of backup entries, offset numbers them in the report
func (s *Store) embedEntries(ctx context.Context, entries []BackupEntry, offset int, report *PopulateReport) []types.ExampleRecord {
	texts := make([]string, len(entries))
	for i, entry := range entries {
		texts[i] = entry.Description
	}

	vectors, err := s.embedding.EmbedDocuments(ctx, texts)
	if err != nil {
		log.Debug("[Populate] batch at entry %d failed, embedding one by one: %s", offset+1, err.Error())
		vectors = make([][]float32, len(entries))
		for i, text := range texts {
			single, err := s.embedding.EmbedDocuments(ctx, []string{text})
			if err != nil {
				report.fail("entry %d: failed to embed description: %s", offset+i+1, err.Error())
				continue
			}
			vectors[i] = single[0]
		}
	}

	records := make([]types.ExampleRecord, 0, len(entries))
	for i, entry := range entries {
		if vectors[i] == nil {
			continue
		}
		records = append(records, types.ExampleRecord{
			ID:          RecordID(entry.Path),
			Path:        entry.Path,
			Description: entry.Description,
			Vector:      vectors[i],
		})
	}
	return records
}

// prepare recreates the collection on rebuild, otherwise makes sure it exists
func (s *Store) prepare(ctx context.Context, name string, rebuild bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rebuild {
		if err := s.RemoveCollection(ctx, name); err != nil {
			return fmt.Errorf("failed to remove collection %s: %w", name, err)
		}
	}

	if err := s.CreateCollection(ctx, name); err != nil {
		return fmt.Errorf("failed to create collection %s: %w", name, err)
	}
	return nil
}

// add embeds the description and upserts the record
func (s *Store) add(ctx context.Context, name, path, description string) error {
	vectors, err := s.embedding.EmbedDocuments(ctx, []string{description})
	if err != nil {
		return fmt.Errorf("failed to embed description: %w", err)
	}

	return s.upsert(ctx, name, []types.ExampleRecord{{
		ID:          RecordID(path),
		Path:        path,
		Description: description,
		Vector:      vectors[0],
	}})
}

func (s *Store) upsert(ctx context.Context, name string, records []types.ExampleRecord) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.vector.Upsert(ctx, name, records); err != nil {
		return fmt.Errorf("failed to store records: %w", err)
	}
	return nil
}

func (s *Store) openBackup() *backupWriter {
	if s.options.BackupFile == "" {
		return nil
	}
	backup, err := openBackup(s.options.BackupFile)
	if err != nil {
		log.Warn("[Populate] %s, continuing without backup", err.Error())
		return nil
	}
	return backup
}

// throttle pauses after every ThrottleEvery items, never after the last one
func (s *Store) throttle(ctx context.Context, i, total int) error {
	every := s.options.ThrottleEvery
	if every <= 0 || s.options.ThrottleDelay <= 0 || (i+1)%every != 0 || i+1 >= total {
		return nil
	}

	log.Trace("[Populate] pausing %s after %d items", s.options.ThrottleDelay, i+1)
	timer := time.NewTimer(s.options.ThrottleDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
