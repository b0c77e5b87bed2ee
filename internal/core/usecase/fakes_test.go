package usecase

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/vaishh-cloud/tattva-project/internal/core/domain"
	"github.com/vaishh-cloud/tattva-project/internal/core/ports"
)

type statusUpdate struct {
	id     string
	status domain.DocumentStatus
	errMsg string
}

type savedResult struct {
	id     string
	text   string
	meta   domain.DocumentMetadata
	chunks []domain.Chunk
}

type fakeDocumentStore struct {
	mu       sync.Mutex
	byID     map[string]*domain.Document
	byHash   map[string]*domain.Document
	statuses []statusUpdate
	saved    []savedResult

	findErr   error
	createErr error
	getErr    error
}

func newFakeDocumentStore() *fakeDocumentStore {
	return &fakeDocumentStore{
		byID:   make(map[string]*domain.Document),
		byHash: make(map[string]*domain.Document),
	}
}

func hashKey(userID, contentHash string) string { return userID + "/" + contentHash }

func (s *fakeDocumentStore) put(doc *domain.Document) {
	s.byID[doc.ID] = doc
	s.byHash[hashKey(doc.UserID, doc.ContentHash)] = doc
}

func (s *fakeDocumentStore) CreateIfAbsent(_ context.Context, doc *domain.Document) (*domain.Document, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return nil, false, s.createErr
	}
	if existing, ok := s.byHash[hashKey(doc.UserID, doc.ContentHash)]; ok {
		return existing, false, nil
	}
	s.put(doc)
	return doc, true, nil
}

func (s *fakeDocumentStore) FindByHash(_ context.Context, userID, contentHash string) (*domain.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findErr != nil {
		return nil, s.findErr
	}
	if doc, ok := s.byHash[hashKey(userID, contentHash)]; ok {
		return doc, nil
	}
	return nil, domain.ErrDocumentNotFound
}

func (s *fakeDocumentStore) GetByID(_ context.Context, id string) (*domain.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	if doc, ok := s.byID[id]; ok {
		return doc, nil
	}
	return nil, domain.ErrDocumentNotFound
}

func (s *fakeDocumentStore) UpdateStatus(_ context.Context, id string, status domain.DocumentStatus, errMessage string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses = append(s.statuses, statusUpdate{id: id, status: status, errMsg: errMessage})
	if doc, ok := s.byID[id]; ok {
		doc.Status = status
		doc.Error = errMessage
	}
	return nil
}

func (s *fakeDocumentStore) SaveProcessingResult(_ context.Context, id string, text string, meta domain.DocumentMetadata, chunks []domain.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, savedResult{id: id, text: text, meta: meta, chunks: chunks})
	if doc, ok := s.byID[id]; ok {
		doc.ExtractedText = text
		doc.Metadata = meta
		doc.Chunks = chunks
	}
	return nil
}

type appendCall struct {
	chatID     string
	entries    []domain.HistoryEntry
	documentID string
	version    int
}

type fakeChatStore struct {
	sessions map[string]*domain.ChatSession
	appended []appendCall
	created  []*domain.ChatSession

	// appendErrs is consumed one error per AppendHistory call; nil entries
	// mean success.
	appendErrs []error
	getErr     error
}

func newFakeChatStore() *fakeChatStore {
	return &fakeChatStore{sessions: make(map[string]*domain.ChatSession)}
}

func (s *fakeChatStore) CreateSession(_ context.Context, session *domain.ChatSession) error {
	copied := *session
	s.sessions[session.ID] = &copied
	s.created = append(s.created, &copied)
	return nil
}

func (s *fakeChatStore) GetSession(_ context.Context, userID, chatID string) (*domain.ChatSession, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	session, ok := s.sessions[chatID]
	if !ok || session.UserID != userID {
		return nil, domain.ErrChatNotFound
	}
	copied := *session
	return &copied, nil
}

func (s *fakeChatStore) ListSessions(_ context.Context, userID string) ([]domain.ChatSession, error) {
	var out []domain.ChatSession
	for _, session := range s.sessions {
		if session.UserID == userID {
			out = append(out, *session)
		}
	}
	return out, nil
}

func (s *fakeChatStore) AppendHistory(_ context.Context, _, chatID string, entries []domain.HistoryEntry, documentID string, expectedVersion int) error {
	var err error
	if len(s.appendErrs) > 0 {
		err = s.appendErrs[0]
		s.appendErrs = s.appendErrs[1:]
	}
	s.appended = append(s.appended, appendCall{
		chatID:     chatID,
		entries:    entries,
		documentID: documentID,
		version:    expectedVersion,
	})
	if err != nil {
		return err
	}
	if session, ok := s.sessions[chatID]; ok {
		session.History = append(session.History, entries...)
		session.Version++
		if documentID != "" {
			session.DocumentID = documentID
		}
	}
	return nil
}

func (s *fakeChatStore) ReplaceHistory(_ context.Context, _, chatID string, history []domain.HistoryEntry, _ int) error {
	if session, ok := s.sessions[chatID]; ok {
		session.History = history
		session.Version++
	}
	return nil
}

func (s *fakeChatStore) Rename(_ context.Context, _, chatID, name string, _ int) error {
	if session, ok := s.sessions[chatID]; ok {
		session.Name = name
		session.Version++
	}
	return nil
}

func (s *fakeChatStore) SetPinned(_ context.Context, _, chatID string, pinned bool, _ int) error {
	if session, ok := s.sessions[chatID]; ok {
		session.Pinned = pinned
		session.Version++
	}
	return nil
}

func (s *fakeChatStore) DeleteSession(_ context.Context, _, chatID string) error {
	delete(s.sessions, chatID)
	return nil
}

func (s *fakeChatStore) DeleteAllSessions(_ context.Context, userID string) error {
	for id, session := range s.sessions {
		if session.UserID == userID {
			delete(s.sessions, id)
		}
	}
	return nil
}

type fakeStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
	saveErr error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string][]byte)}
}

func (s *fakeStorage) Save(_ context.Context, key string, data io.Reader) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.objects[key] = raw
	s.mu.Unlock()
	return nil
}

func (s *fakeStorage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.objects, key)
	s.deleted = append(s.deleted, key)
	s.mu.Unlock()
	return nil
}

func (s *fakeStorage) Open(_ context.Context, key string) (io.ReadCloser, error) {
	s.mu.Lock()
	raw, ok := s.objects[key]
	s.mu.Unlock()
	if !ok {
		return nil, domain.ErrDocumentNotFound
	}
	return io.NopCloser(bytes.NewReader(raw)), nil
}

type fakeQueue struct {
	published  []string
	publishErr error
}

func (q *fakeQueue) PublishDocumentIngested(_ context.Context, documentID string) error {
	if q.publishErr != nil {
		return q.publishErr
	}
	q.published = append(q.published, documentID)
	return nil
}

func (q *fakeQueue) SubscribeDocumentIngested(context.Context, func(context.Context, string) error) error {
	return nil
}

type fakeExtractor struct {
	result ports.ExtractResult
	err    error
}

func (e *fakeExtractor) Extract(context.Context, []byte, string) (ports.ExtractResult, error) {
	return e.result, e.err
}

type fakeChunker struct {
	chunks []domain.Chunk
	err    error
}

func (c *fakeChunker) Split(context.Context, []string) ([]domain.Chunk, error) {
	return c.chunks, c.err
}

type fakeEmbedder struct {
	queryVector []float32
	queryErr    error
	chunksErr   error
	lastQuery   string
}

func (e *fakeEmbedder) EmbedChunks(_ context.Context, chunks []domain.Chunk, query string) ([]domain.Chunk, error) {
	e.lastQuery = query
	if e.chunksErr != nil {
		return nil, e.chunksErr
	}
	out := make([]domain.Chunk, len(chunks))
	for i, chunk := range chunks {
		chunk.Embedding = []float32{1, 0, 0}
		out[i] = chunk
	}
	return out, nil
}

func (e *fakeEmbedder) EmbedQuery(context.Context, string) ([]float32, error) {
	if e.queryErr != nil {
		return nil, e.queryErr
	}
	if e.queryVector != nil {
		return e.queryVector, nil
	}
	return []float32{1, 0, 0}, nil
}

type fakeIndex struct {
	hits []domain.RetrievedChunk
}

func (i *fakeIndex) Search([]float32, int) []domain.RetrievedChunk { return i.hits }
func (i *fakeIndex) Len() int                                      { return len(i.hits) }

type fakeIndexBuilder struct {
	index ports.VectorIndex
	err   error
	built [][]domain.Chunk
}

func (b *fakeIndexBuilder) Build(chunks []domain.Chunk) (ports.VectorIndex, error) {
	b.built = append(b.built, chunks)
	if b.err != nil {
		return nil, b.err
	}
	return b.index, nil
}

type fakeCompletion struct {
	response string
	err      error
	prompts  []string
	opts     []ports.CompletionOptions
	calls    int
}

func (c *fakeCompletion) Complete(_ context.Context, prompt string, opts ports.CompletionOptions) (string, error) {
	c.calls++
	c.prompts = append(c.prompts, prompt)
	c.opts = append(c.opts, opts)
	if c.err != nil {
		return "", c.err
	}
	return c.response, c.err
}

type fakeVision struct {
	summary string
	err     error
	prompts []string
}

func (v *fakeVision) SummarizeImage(_ context.Context, _ []byte, _ domain.FileType, prompt string) (string, error) {
	v.prompts = append(v.prompts, prompt)
	if v.err != nil {
		return "", v.err
	}
	return v.summary, nil
}
