// Package ingest runs GeoJSON documents through validation, mapping and upsert,
// and fetches documents from an upstream URL on a schedule.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	"parks-geojson/internal/logger"
	"parks-geojson/internal/mapper"
	"parks-geojson/internal/metrics"
	"parks-geojson/internal/park"
	"parks-geojson/internal/schema"
	"parks-geojson/internal/store"
)

// Invalidator is told about every park written by a run.
type Invalidator interface {
	Invalidate(ctx context.Context, globalID string) error
}

// FeatureMapper turns one decoded feature into a park. *mapper.Mapper is the production mapper.
type FeatureMapper interface {
	FromFeature(f mapper.Feature) (*park.Park, error)
}

// Options tunes a Pipeline.
type Options struct {
	// Workers > 1 shards upserts by global id; each shard keeps source order.
	Workers     int
	Invalidator Invalidator
}

// Pipeline imports parks documents into a repository. It holds no per-run state
// and may be shared.
type Pipeline struct {
	mapper FeatureMapper
	repo   store.Repository
	opts   Options
}

func New(m FeatureMapper, repo store.Repository, opts Options) *Pipeline {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Pipeline{mapper: m, repo: repo, opts: opts}
}

// Import runs one document. Invalid JSON and validator errors abort the run
// before anything is written; every other problem is confined to its feature.
func (p *Pipeline) Import(ctx context.Context, raw []byte) (sum Summary) {
	sum.RunID = uuid.NewString()
	l := logger.L().With().Str("run_id", sum.RunID).Logger()
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			l.Error().Interface("panic", r).Msg("import_failed")
			sum = Summary{RunID: sum.RunID, Failed: true, Message: MsgServerError}
		}
		metrics.ImportRunsTotal.WithLabelValues(runResult(sum)).Inc()
		metrics.ImportDurationMs.Observe(float64(time.Since(start).Milliseconds()))
	}()

	l.Info().Int("bytes", len(raw)).Msg("import_start")

	if !gjson.ValidBytes(raw) {
		l.Info().Msg("import_invalid_json")
		return aborted(sum, []string{MsgInvalidJSON}, MsgInvalidJSON)
	}
	doc := gjson.ParseBytes(raw)
	if !doc.IsObject() && !doc.IsArray() {
		l.Info().Str("root_type", doc.Type.String()).Msg("import_invalid_json")
		return aborted(sum, []string{MsgInvalidJSON}, MsgInvalidJSON)
	}
	if errs := schema.Validate(doc); len(errs) > 0 {
		l.Info().Int("error_count", len(errs)).Strs("errors_head", head(errs, 10)).Msg("import_validation_failed")
		return aborted(sum, errs, ValidationMessage(errs))
	}

	features := doc.Get("features").Array()
	l.Debug().Int("count", len(features)).Msg("import_features_loaded")
	sum.Results = p.run(ctx, l, features)

	for _, r := range sum.Results {
		metrics.ImportFeaturesTotal.WithLabelValues(string(r.Kind)).Inc()
		if r.Kind == Imported {
			sum.Imported++
			continue
		}
		sum.Skipped++
		l.Debug().Int("index", r.Index).Str("global_id", r.GlobalID).Str("kind", string(r.Kind)).Str("reason", r.Reason).Msg("import_feature_skipped")
	}
	sum.Message = ImportedMessage(sum.Imported, sum.Skipped)
	l.Info().Int("imported", sum.Imported).Int("skipped", sum.Skipped).Dur("took", time.Since(start)).Msg("import_done")
	return sum
}

type job struct {
	index int
	park  *park.Park
}

// run maps features in source order and upserts them inline or through shard workers.
func (p *Pipeline) run(ctx context.Context, l zerolog.Logger, features []gjson.Result) []FeatureResult {
	results := make([]FeatureResult, len(features))

	upsert := func(j job) { results[j.index] = p.upsertOne(ctx, l, j) }
	var (
		shards []chan job
		wg     sync.WaitGroup
	)
	if p.opts.Workers > 1 {
		shards = make([]chan job, p.opts.Workers)
		for i := range shards {
			shards[i] = make(chan job, 64)
			wg.Add(1)
			go func(ch <-chan job) {
				defer wg.Done()
				for j := range ch {
					upsert(j)
				}
			}(shards[i])
		}
	}

	for i, f := range features {
		if ctx.Err() != nil {
			for k := i; k < len(features); k++ {
				results[k] = FeatureResult{Index: k, Kind: Rejected, Reason: ReasonCanceled}
			}
			l.Warn().Int("index", i).Int("remaining", len(features)-i).Msg("import_canceled")
			break
		}
		res, pk := p.mapOne(i, f)
		if pk == nil {
			results[i] = res
			continue
		}
		j := job{index: i, park: pk}
		if shards == nil {
			upsert(j)
			continue
		}
		shards[shard(pk.GlobalID, len(shards))] <- j
	}

	for _, ch := range shards {
		close(ch)
	}
	wg.Wait()
	return results
}

// mapOne decodes and maps one feature. A nil park means res is final.
func (p *Pipeline) mapOne(i int, f gjson.Result) (res FeatureResult, pk *park.Park) {
	defer func() {
		if r := recover(); r != nil {
			res = FeatureResult{Index: i, Kind: Faulted, Reason: fmt.Sprintf("mapper panic: %v", r)}
			pk = nil
		}
	}()

	res.Index = i
	if !f.IsObject() {
		res.Kind, res.Reason = Rejected, "feature is not an object"
		return res, nil
	}

	var feature mapper.Feature
	dec := json.NewDecoder(strings.NewReader(f.Raw))
	dec.UseNumber()
	if err := dec.Decode(&feature); err != nil {
		res.Kind, res.Reason = Faulted, "decode: "+err.Error()
		return res, nil
	}
	res.GlobalID = mapper.GlobalID(feature)

	pk, err := p.mapper.FromFeature(feature)
	switch {
	case mapper.IsRejection(err):
		res.Kind, res.Reason = Rejected, err.Error()
		return res, nil
	case err != nil:
		res.Kind, res.Reason = Faulted, err.Error()
		return res, nil
	}
	return res, pk
}

// upsertOne writes one park. Invalidation runs only after a committed write and
// cannot change the feature's result.
func (p *Pipeline) upsertOne(ctx context.Context, l zerolog.Logger, j job) FeatureResult {
	res := p.write(ctx, j)
	if res.Kind == Imported {
		p.invalidate(ctx, l, j.park.GlobalID)
	}
	return res
}

func (p *Pipeline) write(ctx context.Context, j job) (res FeatureResult) {
	res = FeatureResult{Index: j.index, GlobalID: j.park.GlobalID}
	defer func() {
		if r := recover(); r != nil {
			res.Kind, res.Reason = Faulted, fmt.Sprintf("upsert panic: %v", r)
		}
	}()

	if ctx.Err() != nil {
		res.Kind, res.Reason = Rejected, ReasonCanceled
		return res
	}
	if _, err := p.repo.Upsert(ctx, *j.park); err != nil {
		res.Kind, res.Reason = Faulted, err.Error()
		return res
	}
	res.Kind = Imported
	return res
}

func (p *Pipeline) invalidate(ctx context.Context, l zerolog.Logger, globalID string) {
	if p.opts.Invalidator == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			l.Error().Interface("panic", r).Str("global_id", globalID).Msg("import_invalidate_panic")
		}
	}()
	if err := p.opts.Invalidator.Invalidate(ctx, globalID); err != nil {
		l.Warn().Err(err).Str("global_id", globalID).Msg("import_invalidate_error")
	}
}

func shard(globalID string, n int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(globalID))
	return int(h.Sum32() % uint32(n))
}

func aborted(sum Summary, errs []string, msg string) Summary {
	sum.Aborted = true
	sum.Errors = errs
	sum.Message = msg
	return sum
}

func runResult(s Summary) string {
	switch {
	case s.Failed:
		return "failed"
	case s.Aborted:
		return "aborted"
	}
	return "completed"
}

func head(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
