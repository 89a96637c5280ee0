package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ziadkadry99/scopedoc/internal/audit"
	"github.com/ziadkadry99/scopedoc/internal/delivery"
	"github.com/ziadkadry99/scopedoc/internal/docs"
	"github.com/ziadkadry99/scopedoc/internal/features"
	"github.com/ziadkadry99/scopedoc/internal/intelligence"
	"github.com/ziadkadry99/scopedoc/internal/interview"
	"github.com/ziadkadry99/scopedoc/internal/logging"
	"github.com/ziadkadry99/scopedoc/internal/scope"
	"github.com/ziadkadry99/scopedoc/internal/topics"
)

// DefaultCacheSize is the number of sessions kept in memory.
const DefaultCacheSize = 256

var (
	// ErrUnknownFeature is returned when a selection names a feature that is
	// not in the catalog.
	ErrUnknownFeature = errors.New("unknown feature")
	// ErrUnknownTopic is returned when reopening a topic the catalog does
	// not define.
	ErrUnknownTopic = errors.New("unknown topic")
)

// Options configures an Engine. Store, Topics and Features are required.
type Options struct {
	Store     *Store
	CacheSize int
	Topics    *topics.Catalog
	Features  *features.Catalog
	Generator *interview.Generator
	Audit     *audit.Store
	Delivery  *delivery.Dispatcher
	OutputDir string
	Logger    *slog.Logger
}

// Engine loads sessions, applies operations to them and persists the
// result after every change.
type Engine struct {
	store     *Store
	cache     *lru.Cache[string, *Session]
	loadMu    sync.Mutex
	pinMu     sync.Mutex
	pins      map[string]*pin
	topics    *topics.Catalog
	features  *features.Catalog
	synth     *scope.Synthesizer
	generator *interview.Generator
	audit     *audit.Store
	delivery  *delivery.Dispatcher
	outputDir string
	logger    *slog.Logger
	wg        sync.WaitGroup
}

// NewEngine creates an engine from opts.
func NewEngine(opts Options) (*Engine, error) {
	if opts.Store == nil || opts.Topics == nil || opts.Features == nil {
		return nil, fmt.Errorf("session engine needs a store and both catalogs")
	}
	size := opts.CacheSize
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, *Session](size)
	if err != nil {
		return nil, fmt.Errorf("creating session cache: %w", err)
	}
	return &Engine{
		store:     opts.Store,
		cache:     cache,
		pins:      make(map[string]*pin),
		topics:    opts.Topics,
		features:  opts.Features,
		synth:     scope.NewSynthesizer(opts.Features),
		generator: opts.Generator,
		audit:     opts.Audit,
		delivery:  opts.Delivery,
		outputDir: opts.OutputDir,
		logger:    logging.OrDiscard(opts.Logger),
	}, nil
}

// Close waits for background deliveries to finish.
func (e *Engine) Close() {
	e.wg.Wait()
}

// Store returns the underlying session store.
func (e *Engine) Store() *Store { return e.store }

// Features returns the feature catalog.
func (e *Engine) Features() *features.Catalog { return e.features }

// Create starts a new session.
func (e *Engine) Create(ctx context.Context) (*Session, error) {
	s := New(uuid.NewString(), e.topics)
	if err := e.store.CreateSession(ctx, s.ID, s.CreatedAt); err != nil {
		return nil, err
	}
	if err := e.persist(ctx, s); err != nil {
		return nil, err
	}
	e.cache.Add(s.ID, s)
	e.logger.Info("session created", "session", s.ID)
	return s, nil
}

// pin holds a session in memory for the length of an operation. While a
// session is pinned, cache eviction cannot make Get load a second copy of
// it from the store. The in-flight question slot and the document lock
// live here too.
type pin struct {
	id         string
	s          *Session
	refs       int
	generating bool
	docMu      sync.Mutex
}

// acquire returns the session pinned until release is called.
func (e *Engine) acquire(ctx context.Context, id string) (*pin, error) {
	e.loadMu.Lock()
	defer e.loadMu.Unlock()

	e.pinMu.Lock()
	p, ok := e.pins[id]
	if ok {
		p.refs++
	}
	e.pinMu.Unlock()
	if ok {
		return p, nil
	}

	s, err := e.load(ctx, id)
	if err != nil {
		return nil, err
	}
	p = &pin{id: id, s: s, refs: 1}
	e.pinMu.Lock()
	e.pins[id] = p
	e.pinMu.Unlock()
	return p, nil
}

func (e *Engine) release(p *pin) {
	e.pinMu.Lock()
	defer e.pinMu.Unlock()
	p.refs--
	if p.refs == 0 {
		delete(e.pins, p.id)
	}
}

// Generating reports whether a question is being generated for the session.
func (e *Engine) Generating(id string) bool {
	e.pinMu.Lock()
	defer e.pinMu.Unlock()
	p, ok := e.pins[id]
	return ok && p.generating
}

// Get returns a session from memory or the store.
func (e *Engine) Get(ctx context.Context, id string) (*Session, error) {
	if s, ok := e.cache.Get(id); ok {
		return s, nil
	}
	e.loadMu.Lock()
	defer e.loadMu.Unlock()
	return e.load(ctx, id)
}

// load must be called with loadMu held.
func (e *Engine) load(ctx context.Context, id string) (*Session, error) {
	e.pinMu.Lock()
	p, ok := e.pins[id]
	e.pinMu.Unlock()
	if ok {
		e.cache.Add(id, p.s)
		return p.s, nil
	}
	if s, ok := e.cache.Get(id); ok {
		return s, nil
	}

	_, state, err := e.store.LoadState(ctx, id)
	if err != nil {
		return nil, err
	}
	s := New(id, e.topics)
	if err := s.ImportState(state); err != nil {
		return nil, fmt.Errorf("restoring session %s: %w", id, err)
	}
	e.cache.Add(id, s)
	return s, nil
}

// List returns stored sessions, most recently updated first.
func (e *Engine) List(ctx context.Context, limit int) ([]Summary, error) {
	return e.store.ListSessions(ctx, limit)
}

func (e *Engine) persist(ctx context.Context, s *Session) error {
	rec := s.Record()
	status := StatusActive
	if s.IsComplete() {
		status = StatusComplete
	}
	sum := Summary{
		ID:            s.ID,
		ClientName:    rec.Name(),
		Status:        status,
		QuestionCount: s.QuestionCount(),
	}
	if err := e.store.SaveState(ctx, sum, s.ExportState()); err != nil {
		return fmt.Errorf("persisting session %s: %w", s.ID, err)
	}
	return nil
}

func (e *Engine) log(ctx context.Context, entry audit.Entry) {
	if e.audit == nil {
		return
	}
	if _, err := e.audit.Log(ctx, entry); err != nil {
		e.logger.Warn("audit log failed", "session", entry.SessionID, "action", entry.Action, "error", err)
	}
}

// NextQuestion asks the generator for the next question. At most one call
// per session is in flight; a concurrent call fails with
// ErrGenerationInFlight without reaching the generator. Generator errors
// are returned as is and the session is left unchanged.
func (e *Engine) NextQuestion(ctx context.Context, id string) (*interview.Response, error) {
	if e.generator == nil {
		return nil, ErrNoGenerator
	}
	p, err := e.acquire(ctx, id)
	if err != nil {
		return nil, err
	}
	defer e.release(p)
	s := p.s
	if s.IsComplete() {
		return nil, ErrSessionComplete
	}

	e.pinMu.Lock()
	busy := p.generating
	p.generating = true
	e.pinMu.Unlock()
	if busy {
		return nil, ErrGenerationInFlight
	}
	defer func() {
		e.pinMu.Lock()
		p.generating = false
		e.pinMu.Unlock()
	}()

	resp, err := e.generator.Next(ctx, interview.BuildContext(s.ContextInput()))
	if err != nil {
		e.logger.Warn("question generation failed", "session", id, "error", err)
		return nil, err
	}

	switch resp.Action {
	case interview.ActionAskQuestion:
		topic := s.RecordQuestion(*resp.Question)
		e.logger.Debug("question asked", "session", id, "question", resp.Question.ID, "topic", topic)
	case interview.ActionComplete:
		s.Complete()
		e.logger.Info("interview complete", "session", id,
			"questions", s.QuestionCount(), "confidence", resp.Sufficiency.Confidence)
	}
	if err := e.persist(ctx, s); err != nil {
		return nil, err
	}
	return resp, nil
}

// Answer records one answer.
func (e *Engine) Answer(ctx context.Context, id string, in AnswerInput) (*AnswerResult, error) {
	p, err := e.acquire(ctx, id)
	if err != nil {
		return nil, err
	}
	defer e.release(p)
	s := p.s
	res := s.Answer(in)
	if err := e.persist(ctx, s); err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(res.Facts))
	for _, f := range res.Facts {
		keys = append(keys, f.Key)
	}
	e.log(ctx, audit.Entry{
		SessionID: id,
		Actor:     audit.ActorClient,
		Action:    audit.ActionAnswerRecorded,
		Summary:   fmt.Sprintf("Answer recorded, %d fact(s) extracted", len(res.Facts)),
		Detail:    strings.Join(keys, ", "),
	})
	e.logClosed(ctx, id, res.NewlyClosed)
	return &res, nil
}

func (e *Engine) logClosed(ctx context.Context, id string, closed []string) {
	for _, topic := range closed {
		e.log(ctx, audit.Entry{
			SessionID: id,
			Action:    audit.ActionTopicClosed,
			Summary:   "Topic closed: " + topic,
			Detail:    topic,
		})
	}
}

// SetFoundation merges intake-form fields into the session.
func (e *Engine) SetFoundation(ctx context.Context, id string, f intelligence.Foundation) (*View, error) {
	p, err := e.acquire(ctx, id)
	if err != nil {
		return nil, err
	}
	defer e.release(p)
	s := p.s
	closed := s.SetFoundation(f)
	if err := e.persist(ctx, s); err != nil {
		return nil, err
	}

	var fields []string
	for _, kv := range [][2]string{
		{"name", f.Name}, {"email", f.Email}, {"phone", f.Phone}, {"company", f.Company}, {"website_type", f.WebsiteType},
	} {
		if strings.TrimSpace(kv[1]) != "" {
			fields = append(fields, kv[0])
		}
	}
	e.log(ctx, audit.Entry{
		SessionID: id,
		Actor:     audit.ActorConsultant,
		Action:    audit.ActionFoundationUpdated,
		Summary:   "Foundation updated",
		Detail:    strings.Join(fields, ", "),
	})
	e.logClosed(ctx, id, closed)
	v := s.View()
	return &v, nil
}

// FeatureSelection is the outcome of a feature selection.
type FeatureSelection struct {
	Selected        []string                  `json:"selected"`
	Conflicts       []features.Conflict       `json:"conflicts"`
	Dependencies    features.DependencyReport `json:"dependencies"`
	Recommendations []features.Feature        `json:"recommendations"`
}

// SelectFeatures replaces the session's feature selection and reports
// conflicts, missing dependencies and recommendations. Unknown ids are
// rejected and nothing changes.
func (e *Engine) SelectFeatures(ctx context.Context, id string, ids []string) (*FeatureSelection, error) {
	var unknown []string
	for _, fid := range ids {
		if _, ok := e.features.Feature(fid); !ok {
			unknown = append(unknown, fid)
		}
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFeature, strings.Join(unknown, ", "))
	}

	p, err := e.acquire(ctx, id)
	if err != nil {
		return nil, err
	}
	defer e.release(p)
	s := p.s
	closed := s.SelectFeatures(ids)
	if err := e.persist(ctx, s); err != nil {
		return nil, err
	}

	rec := s.Record()
	sel := &FeatureSelection{
		Selected:        nonNil(rec.SelectedFeatures),
		Conflicts:       nonNil(e.features.DetectConflicts(rec.SelectedFeatures)),
		Dependencies:    e.features.ValidateDependencies(rec.SelectedFeatures),
		Recommendations: nonNil(e.features.Recommend(rec.WebsiteType(), rec.SelectedFeatures)),
	}
	e.log(ctx, audit.Entry{
		SessionID: id,
		Actor:     audit.ActorClient,
		Action:    audit.ActionFeaturesSelected,
		Summary:   fmt.Sprintf("%d feature(s) selected, %d conflict(s)", len(sel.Selected), len(sel.Conflicts)),
		Detail:    strings.Join(sel.Selected, ", "),
	})
	e.logClosed(ctx, id, closed)
	return sel, nil
}

// ReopenTopic removes a topic from the closed set so it can be asked about
// again. It reports whether the topic was closed.
func (e *Engine) ReopenTopic(ctx context.Context, id, topic string) (bool, error) {
	if _, ok := e.topics.Lookup(topic); !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownTopic, topic)
	}
	p, err := e.acquire(ctx, id)
	if err != nil {
		return false, err
	}
	defer e.release(p)
	s := p.s
	if !s.ReopenTopic(topic) {
		return false, nil
	}
	if err := e.persist(ctx, s); err != nil {
		return false, err
	}
	e.log(ctx, audit.Entry{
		SessionID: id,
		Actor:     audit.ActorConsultant,
		Action:    audit.ActionTopicReopened,
		Summary:   "Topic reopened: " + topic,
		Detail:    topic,
	})
	return true, nil
}

// Pricing is a quote for the session as it stands.
type Pricing struct {
	Classification scope.Classification `json:"classification"`
	Quote          features.Quote       `json:"quote"`
}

// Pricing classifies the session and prices its features in the resulting
// package tier. Unlike Generate it works before the foundation is complete.
func (e *Engine) Pricing(ctx context.Context, id string) (*Pricing, error) {
	s, err := e.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	class, ids := e.synth.Classify(s.Record())
	return &Pricing{
		Classification: class,
		Quote:          e.features.CalculatePricing(ids, class.PackageTier),
	}, nil
}

// Generate synthesizes, renders and stores a new document version. The
// rendered files are written to the output directory when one is set, and
// the version is handed to the delivery dispatcher in the background.
// Missing foundation fields fail with *scope.MissingFieldsError.
func (e *Engine) Generate(ctx context.Context, id string) (*scope.Document, error) {
	p, err := e.acquire(ctx, id)
	if err != nil {
		return nil, err
	}
	defer e.release(p)
	p.docMu.Lock()
	defer p.docMu.Unlock()

	rec := p.s.Record()
	doc, err := e.synth.Synthesize(rec, id)
	if err != nil {
		return nil, err
	}
	latest, err := e.store.LatestVersion(ctx, id)
	if err != nil {
		return nil, err
	}
	doc.Version = latest + 1

	rendered, err := docs.Render(doc)
	if err != nil {
		return nil, fmt.Errorf("rendering document: %w", err)
	}
	if _, err := e.store.SaveDocument(ctx, StoredDocument{
		SessionID: id,
		Version:   doc.Version,
		Body:      string(rendered.JSON),
		Markdown:  rendered.Markdown,
		Score:     doc.Validation.Score,
		Complete:  doc.Validation.Complete,
		CreatedAt: doc.GeneratedAt,
	}); err != nil {
		return nil, err
	}

	if e.outputDir != "" {
		if paths, err := docs.WriteFiles(doc, e.outputDir); err != nil {
			e.logger.Warn("writing document files failed", "session", id, "error", err)
		} else {
			e.logger.Info("document files written", "session", id, "files", len(paths))
		}
	}

	e.log(ctx, audit.Entry{
		SessionID: id,
		Action:    audit.ActionDocumentGenerated,
		Summary: fmt.Sprintf("Document v%d generated, score %d, total %s",
			doc.Version, doc.Validation.Score, docs.Money(doc.InvestmentSummary.ProjectTotal)),
		Detail: fmt.Sprintf("%d issue(s)", len(doc.Validation.Issues)),
	})
	e.logger.Info("document generated", "session", id, "version", doc.Version,
		"score", doc.Validation.Score, "complete", doc.Validation.Complete)

	if e.delivery != nil {
		e.deliver(ctx, rec, doc, rendered)
	}
	return doc, nil
}

func (e *Engine) deliver(ctx context.Context, rec *intelligence.Record, doc *scope.Document, rendered *docs.Rendered) {
	d := delivery.Delivery{
		SessionID:    doc.ConversationID,
		Version:      doc.Version,
		ClientName:   rec.Name(),
		ClientEmail:  rec.Email(),
		Score:        doc.Validation.Score,
		Complete:     doc.Validation.Complete,
		ProjectTotal: doc.InvestmentSummary.ProjectTotal,
		Markdown:     rendered.Markdown,
		HTML:         rendered.HTML,
		JSON:         rendered.JSON,
	}
	bg := context.WithoutCancel(ctx)
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		if _, err := e.delivery.Deliver(bg, d); err != nil {
			e.logger.Warn("document delivery failed", "session", d.SessionID, "version", d.Version, "error", err)
		}
	}()
}

// Document returns a stored document version decoded from its JSON body;
// version 0 means the latest.
func (e *Engine) Document(ctx context.Context, id string, version int) (*scope.Document, *StoredDocument, error) {
	stored, err := e.store.GetDocument(ctx, id, version)
	if err != nil {
		return nil, nil, err
	}
	var doc scope.Document
	if err := json.Unmarshal([]byte(stored.Body), &doc); err != nil {
		return nil, nil, fmt.Errorf("decoding document v%d: %w", stored.Version, err)
	}
	return &doc, stored, nil
}

// Reset clears everything learned in a session. Stored document versions
// are kept.
func (e *Engine) Reset(ctx context.Context, id string) error {
	p, err := e.acquire(ctx, id)
	if err != nil {
		return err
	}
	defer e.release(p)
	s := p.s
	if e.Generating(id) {
		return ErrGenerationInFlight
	}
	s.Reset()
	if err := e.persist(ctx, s); err != nil {
		return err
	}
	e.log(ctx, audit.Entry{
		SessionID: id,
		Actor:     audit.ActorConsultant,
		Action:    audit.ActionSessionReset,
		Summary:   "Session reset",
	})
	return nil
}
