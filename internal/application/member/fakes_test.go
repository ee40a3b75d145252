package member

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/xiebiao/playchat/internal/domain/member"
	"github.com/xiebiao/playchat/internal/infrastructure/config"
)

// memoryRepo 内存仓储
type memoryRepo struct {
	mu      sync.Mutex
	nextID  uint
	members map[uint]*member.Member
	// createErr、updateErr非nil时对应方法直接返回该错误
	createErr error
	updateErr error
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{nextID: 1, members: map[uint]*member.Member{}}
}

func (r *memoryRepo) Create(ctx context.Context, m *member.Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	for _, existing := range r.members {
		if existing.Email == m.Email {
			return member.ErrEmailDuplicate
		}
	}
	m.ID = r.nextID
	r.nextID++
	cp := *m
	r.members[m.ID] = &cp
	return nil
}

func (r *memoryRepo) FindByID(ctx context.Context, id uint) (*member.Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.members[id]
	if !ok {
		return nil, member.ErrMemberNotFound
	}
	cp := *m
	return &cp, nil
}

func (r *memoryRepo) FindByEmail(ctx context.Context, email string) (*member.Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.members {
		if m.Email == email {
			cp := *m
			return &cp, nil
		}
	}
	return nil, member.ErrMemberNotFound
}

func (r *memoryRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.FindByEmail(ctx, email)
	if errors.Is(err, member.ErrMemberNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (r *memoryRepo) FindAll(ctx context.Context) ([]*member.Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*member.Member, 0, len(r.members))
	for _, m := range r.members {
		cp := *m
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memoryRepo) Update(ctx context.Context, m *member.Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	if _, ok := r.members[m.ID]; !ok {
		return member.ErrMemberNotFound
	}
	cp := *m
	r.members[m.ID] = &cp
	return nil
}

func (r *memoryRepo) ImageURLs(ctx context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var urls []string
	for _, m := range r.members {
		urls = append(urls, m.ImageURL)
	}
	return urls, nil
}

// memoryStore 内存文件存储
type memoryStore struct {
	mu     sync.Mutex
	files  map[string][]byte
	putErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{files: map[string][]byte{}}
}

func (s *memoryStore) Put(ctx context.Context, name string, content io.Reader, size int64, contentType string) error {
	if s.putErr != nil {
		return s.putErr
	}
	data, err := io.ReadAll(content)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[name] = data
	return nil
}

func (s *memoryStore) Get(ctx context.Context, name string) (*member.File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.files[name]
	if !ok {
		return nil, member.ErrImageNotFound
	}
	return &member.File{
		FileInfo: member.FileInfo{Name: name, Size: int64(len(data)), ContentType: "image/png"},
		Content:  io.NopCloser(bytes.NewReader(data)),
	}, nil
}

func (s *memoryStore) Remove(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, name)
	return nil
}

func (s *memoryStore) List(ctx context.Context) ([]member.FileInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []member.FileInfo
	for name, data := range s.files {
		out = append(out, member.FileInfo{Name: name, Size: int64(len(data))})
	}
	return out, nil
}

func (s *memoryStore) Driver() string { return "memory" }

func (s *memoryStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.files)
}

// passthroughProcessor 以"PNG"开头的内容视为图片
type passthroughProcessor struct{}

func (passthroughProcessor) Process(content io.Reader) (*member.ProcessedImage, error) {
	data, err := io.ReadAll(content)
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(string(data), "PNG") {
		return nil, member.ErrInvalidImage
	}
	return &member.ProcessedImage{Data: data, Ext: ".png", ContentType: "image/png", Width: 1, Height: 1}, nil
}

// recordingPublisher 记录发布的事件
type recordingPublisher struct {
	mu     sync.Mutex
	keys   []string
	events []interface{}
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, routingKey string, message interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, routingKey)
	p.events = append(p.events, message)
	return p.err
}

// directTransactor 不开启真实事务，记录调用次数
type directTransactor struct {
	calls int
}

func (t *directTransactor) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++
	return fn(ctx)
}

// memoryBlacklist 内存黑名单
type memoryBlacklist struct {
	mu     sync.Mutex
	tokens map[string]time.Duration
}

func newMemoryBlacklist() *memoryBlacklist {
	return &memoryBlacklist{tokens: map[string]time.Duration{}}
}

func (b *memoryBlacklist) Add(ctx context.Context, token string, ttl time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tokens[token] = ttl
	return nil
}

func (b *memoryBlacklist) Contains(ctx context.Context, token string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.tokens[token]
	return ok, nil
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Server.BackendURL = "http://localhost:8080"
	cfg.Storage.DefaultImage = "default-profile.png"
	cfg.Storage.MaxUploadSize = 1 << 10
	return cfg
}

const defaultImageURL = "http://localhost:8080/images/default-profile.png"

func pngUpload(content string) *member.Upload {
	return &member.Upload{Filename: "a.png", Size: int64(len(content)), Content: strings.NewReader(content)}
}

type fixture struct {
	repo      *memoryRepo
	store     *memoryStore
	publisher *recordingPublisher
	tx        *directTransactor
	service   member.Service
	images    *ProfileImageService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repo:      newMemoryRepo(),
		store:     newMemoryStore(),
		publisher: &recordingPublisher{},
		tx:        &directTransactor{},
	}
	f.service = member.NewService(f.repo, member.WithBcryptCost(bcrypt.MinCost))
	f.images = NewProfileImageService(f.store, passthroughProcessor{}, testConfig())
	return f
}

func (f *fixture) seed(t *testing.T, email, nickname string) *member.Member {
	t.Helper()
	m, err := f.service.Register(context.Background(), email, "abcd123!", nickname, defaultImageURL)
	require.NoError(t, err)
	return m
}
