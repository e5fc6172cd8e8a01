package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"quillpdf/internal/ai"
	"quillpdf/internal/model"
)

// opLog records the order of side effects across fakes so tests can
// assert sequencing, e.g. that a message is persisted before any
// retrieval work happens.
type opLog struct {
	entries []string
}

func (l *opLog) add(entry string) {
	if l != nil {
		l.entries = append(l.entries, entry)
	}
}

type fakeUserStore struct {
	users  map[uint]*model.User
	nextID uint

	updateBillingCalls  int
	refreshBillingCalls int
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[uint]*model.User), nextID: 1}
}

func (s *fakeUserStore) Create(user *model.User) error {
	if user.ID == 0 {
		user.ID = s.nextID
		s.nextID++
	}
	copied := *user
	s.users[user.ID] = &copied
	return nil
}

func (s *fakeUserStore) GetByID(id uint) (*model.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	copied := *user
	return &copied, nil
}

func (s *fakeUserStore) GetByUsername(username string) (*model.User, error) {
	for _, user := range s.users {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *fakeUserStore) GetByEmail(email string) (*model.User, error) {
	for _, user := range s.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *fakeUserStore) GetBySubscriptionID(subscriptionID string) (*model.User, error) {
	for _, user := range s.users {
		if user.StripeSubscriptionID == subscriptionID {
			copied := *user
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *fakeUserStore) UpdateBilling(userID uint, customerID, subscriptionID, priceID string, periodEnd time.Time) error {
	s.updateBillingCalls++
	user, ok := s.users[userID]
	if !ok {
		return fmt.Errorf("user %d not found", userID)
	}
	user.StripeCustomerID = customerID
	user.StripeSubscriptionID = subscriptionID
	user.StripePriceID = priceID
	end := periodEnd
	user.StripeCurrentPeriodEnd = &end
	return nil
}

func (s *fakeUserStore) RefreshBilling(subscriptionID, priceID string, periodEnd time.Time) error {
	s.refreshBillingCalls++
	for _, user := range s.users {
		if user.StripeSubscriptionID == subscriptionID {
			user.StripePriceID = priceID
			end := periodEnd
			user.StripeCurrentPeriodEnd = &end
			return nil
		}
	}
	return nil
}

type fakeFileStore struct {
	files map[string]*model.File

	updateStatusErr error
	statuses        []model.UploadStatus
}

func newFakeFileStore(files ...*model.File) *fakeFileStore {
	s := &fakeFileStore{files: make(map[string]*model.File)}
	for _, f := range files {
		copied := *f
		s.files[f.ID] = &copied
	}
	return s
}

func (s *fakeFileStore) Create(file *model.File) error {
	copied := *file
	s.files[file.ID] = &copied
	return nil
}

func (s *fakeFileStore) ListByUserID(userID uint) ([]model.File, error) {
	var out []model.File
	for _, f := range s.files {
		if f.UserID == userID {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (s *fakeFileStore) GetByID(id string) (*model.File, error) {
	file, ok := s.files[id]
	if !ok {
		return nil, nil
	}
	copied := *file
	return &copied, nil
}

func (s *fakeFileStore) GetByIDAndUserID(id string, userID uint) (*model.File, error) {
	file, ok := s.files[id]
	if !ok || file.UserID != userID {
		return nil, nil
	}
	copied := *file
	return &copied, nil
}

func (s *fakeFileStore) GetByKeyAndUserID(key string, userID uint) (*model.File, error) {
	for _, f := range s.files {
		if f.Key == key && f.UserID == userID {
			copied := *f
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *fakeFileStore) UpdateStatus(id string, status model.UploadStatus) error {
	if s.updateStatusErr != nil {
		return s.updateStatusErr
	}
	file, ok := s.files[id]
	if !ok {
		return fmt.Errorf("file %s not found", id)
	}
	file.UploadStatus = status
	s.statuses = append(s.statuses, status)
	return nil
}

func (s *fakeFileStore) DeleteByIDAndUserID(id string, userID uint) error {
	file, ok := s.files[id]
	if !ok || file.UserID != userID {
		return nil
	}
	delete(s.files, id)
	return nil
}

type fakeMessageStore struct {
	log *opLog

	messages  []model.Message
	nextID    uint
	createErr error
}

func newFakeMessageStore(log *opLog) *fakeMessageStore {
	return &fakeMessageStore{log: log, nextID: 1}
}

func (s *fakeMessageStore) Create(message *model.Message) error {
	if s.createErr != nil {
		return s.createErr
	}
	message.ID = s.nextID
	s.nextID++
	s.messages = append(s.messages, *message)
	if message.IsUserMessage {
		s.log.add("create user message")
	} else {
		s.log.add("create assistant message")
	}
	return nil
}

func (s *fakeMessageStore) byFileNewestFirst(fileID string) []model.Message {
	var out []model.Message
	for _, m := range s.messages {
		if m.FileID == fileID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (s *fakeMessageStore) ListRecentByFileID(fileID string, limit int) ([]model.Message, error) {
	newest := s.byFileNewestFirst(fileID)
	if limit > 0 && len(newest) > limit {
		newest = newest[:limit]
	}
	// oldest first
	for i, j := 0, len(newest)-1; i < j; i, j = i+1, j-1 {
		newest[i], newest[j] = newest[j], newest[i]
	}
	return newest, nil
}

func (s *fakeMessageStore) ListPageByFileID(fileID string, limit int, cursor uint) ([]model.Message, uint, error) {
	if limit <= 0 {
		limit = 20
	}
	var page []model.Message
	for _, m := range s.byFileNewestFirst(fileID) {
		if cursor != 0 && m.ID > cursor {
			continue
		}
		page = append(page, m)
		if len(page) == limit+1 {
			break
		}
	}
	var next uint
	if len(page) > limit {
		next = page[limit].ID
		page = page[:limit]
	}
	return page, next, nil
}

func (s *fakeMessageStore) DeleteByFileID(fileID string) error {
	kept := s.messages[:0]
	for _, m := range s.messages {
		if m.FileID != fileID {
			kept = append(kept, m)
		}
	}
	s.messages = kept
	return nil
}

type fakeObjectStore struct {
	objects  map[string][]byte
	fetchErr error
}

func (s *fakeObjectStore) ObjectURL(key string) string {
	return "https://objects.test/" + key
}

func (s *fakeObjectStore) Fetch(_ context.Context, key string) ([]byte, error) {
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	raw, ok := s.objects[key]
	if !ok {
		return nil, fmt.Errorf("object %s not found", key)
	}
	return raw, nil
}

type fakeStatusCache struct {
	statuses map[string]model.UploadStatus
}

func newFakeStatusCache() *fakeStatusCache {
	return &fakeStatusCache{statuses: make(map[string]model.UploadStatus)}
}

func (c *fakeStatusCache) GetStatus(_ context.Context, fileID string) (model.UploadStatus, bool, error) {
	status, ok := c.statuses[fileID]
	return status, ok, nil
}

func (c *fakeStatusCache) SetStatus(_ context.Context, fileID string, status model.UploadStatus) error {
	c.statuses[fileID] = status
	return nil
}

func (c *fakeStatusCache) Delete(_ context.Context, fileID string) error {
	delete(c.statuses, fileID)
	return nil
}

type fakePublisher struct {
	jobs       []IngestJob
	publishErr error
}

func (p *fakePublisher) Publish(_ context.Context, job IngestJob) error {
	if p.publishErr != nil {
		return p.publishErr
	}
	p.jobs = append(p.jobs, job)
	return nil
}

type fakeEmbedder struct {
	log *opLog

	embedding []float32
	batchFn   func(texts []string) ([][]float32, error)
	embedErr  error
}

func (e *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	e.log.add("embed")
	if e.embedErr != nil {
		return nil, e.embedErr
	}
	if e.embedding != nil {
		return e.embedding, nil
	}
	return []float32{1, 0, 0}, nil
}

func (e *fakeEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	e.log.add("embed batch")
	if e.embedErr != nil {
		return nil, e.embedErr
	}
	if e.batchFn != nil {
		return e.batchFn(texts)
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, float32(i), 0}
	}
	return out, nil
}

type fakeStreamer struct {
	log *opLog

	chunks    []string
	streamErr error

	prompt []ai.ChatMessage
}

func (s *fakeStreamer) StreamComplete(_ context.Context, messages []ai.ChatMessage, onChunk func(string) error) (string, error) {
	s.log.add("stream")
	s.prompt = messages
	if s.streamErr != nil {
		return "", s.streamErr
	}
	var full string
	for _, chunk := range s.chunks {
		full += chunk
		if err := onChunk(chunk); err != nil {
			return "", err
		}
	}
	return full, nil
}

type fakeBillingClient struct {
	event     *WebhookEvent
	verifyErr error

	subscriptions map[string]*Subscription

	checkoutURL string
	portalURL   string

	checkoutCalls int
	portalCalls   int
}

func (c *fakeBillingClient) VerifyEvent(_ []byte, _ string) (*WebhookEvent, error) {
	if c.verifyErr != nil {
		return nil, c.verifyErr
	}
	return c.event, nil
}

func (c *fakeBillingClient) GetSubscription(_ context.Context, id string) (*Subscription, error) {
	sub, ok := c.subscriptions[id]
	if !ok {
		return nil, errors.New("no such subscription: " + id)
	}
	return sub, nil
}

func (c *fakeBillingClient) NewCheckoutSession(_ context.Context, _ uint, _ string) (string, error) {
	c.checkoutCalls++
	return c.checkoutURL, nil
}

func (c *fakeBillingClient) NewPortalSession(_ context.Context, _ string) (string, error) {
	c.portalCalls++
	return c.portalURL, nil
}
