package channelsync

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	ytapi "google.golang.org/api/youtube/v3"

	apperrors "github.com/paulsundquist/yt-aggregator/internal/errors"
	"github.com/paulsundquist/yt-aggregator/internal/model"
	"github.com/paulsundquist/yt-aggregator/internal/runlock"
	"github.com/paulsundquist/yt-aggregator/internal/service/youtube"
)

// fakeChannelRepo is an in-memory ChannelRepository with PostgreSQL-like semantics
type fakeChannelRepo struct {
	mu         sync.Mutex
	channels   map[string]*model.Channel
	selectErr  error
	cacheErr   error
	cacheCalls int
}

func newFakeChannelRepo(channels ...*model.Channel) *fakeChannelRepo {
	r := &fakeChannelRepo{channels: map[string]*model.Channel{}}
	for _, c := range channels {
		r.channels[c.ID] = c
	}
	return r
}

func copyChannel(c *model.Channel) *model.Channel {
	cp := *c
	if c.CatalogID != nil {
		id := *c.CatalogID
		cp.CatalogID = &id
	}
	return &cp
}

func (r *fakeChannelRepo) sorted(filter func(*model.Channel) bool) []*model.Channel {
	ids := make([]string, 0, len(r.channels))
	for id := range r.channels {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := []*model.Channel{}
	for _, id := range ids {
		if c := r.channels[id]; filter(c) {
			out = append(out, copyChannel(c))
		}
	}
	return out
}

func (r *fakeChannelRepo) ListActive(ctx context.Context) ([]*model.Channel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.selectErr != nil {
		return nil, r.selectErr
	}
	return r.sorted(func(c *model.Channel) bool { return c.Active }), nil
}

func (r *fakeChannelRepo) ListActiveBySchedule(ctx context.Context, tier model.ScheduleTier) ([]*model.Channel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.selectErr != nil {
		return nil, r.selectErr
	}
	return r.sorted(func(c *model.Channel) bool {
		return c.Active && c.Schedule != nil && *c.Schedule == tier
	}), nil
}

func (r *fakeChannelRepo) GetActiveByID(ctx context.Context, id string) (*model.Channel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.selectErr != nil {
		return nil, r.selectErr
	}
	c, ok := r.channels[id]
	if !ok || !c.Active {
		return nil, apperrors.New(apperrors.CodeNotFound, "channel not found: "+id)
	}
	return copyChannel(c), nil
}

func (r *fakeChannelRepo) GetByID(ctx context.Context, id string) (*model.Channel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.channels[id]
	if !ok {
		return nil, apperrors.New(apperrors.CodeNotFound, "channel not found: "+id)
	}
	return copyChannel(c), nil
}

func (r *fakeChannelRepo) Upsert(ctx context.Context, channel *model.Channel) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := copyChannel(channel)
	stored.Active = true
	if existing, ok := r.channels[channel.ID]; ok {
		stored.CatalogID = existing.CatalogID
	}
	r.channels[channel.ID] = stored
	channel.Active = true
	return nil
}

func (r *fakeChannelRepo) CacheCatalogID(ctx context.Context, channelID, catalogID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cacheCalls++
	if r.cacheErr != nil {
		return r.cacheErr
	}
	c, ok := r.channels[channelID]
	if !ok {
		return apperrors.New(apperrors.CodeNotFound, "channel not found: "+channelID)
	}
	c.CatalogID = &catalogID
	return nil
}

func (r *fakeChannelRepo) ClearCatalogID(ctx context.Context, channelID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.channels[channelID]
	if !ok {
		return apperrors.New(apperrors.CodeNotFound, "channel not found: "+channelID)
	}
	c.CatalogID = nil
	return nil
}

func (r *fakeChannelRepo) List(ctx context.Context, limit, offset int) ([]*model.Channel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.sorted(func(*model.Channel) bool { return true })
	if offset >= len(all) {
		return []*model.Channel{}, nil
	}
	return all[offset:min(offset+limit, len(all))], nil
}

// fakeVideoRepo keeps channel, publish time and category from the first insert
type fakeVideoRepo struct {
	mu      sync.Mutex
	videos  map[string]model.Video
	failOn  map[string]error
	upserts int
}

func newFakeVideoRepo() *fakeVideoRepo {
	return &fakeVideoRepo{videos: map[string]model.Video{}, failOn: map[string]error{}}
}

func (r *fakeVideoRepo) Upsert(ctx context.Context, video *model.Video) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err, ok := r.failOn[video.ID]; ok {
		return err
	}
	stored := *video
	if existing, ok := r.videos[video.ID]; ok {
		stored.ChannelID = existing.ChannelID
		stored.PublishedAt = existing.PublishedAt
		stored.Category = existing.Category
	}
	r.videos[video.ID] = stored
	r.upserts++
	return nil
}

func (r *fakeVideoRepo) GetByID(ctx context.Context, id string) (*model.Video, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.videos[id]
	if !ok {
		return nil, apperrors.New(apperrors.CodeNotFound, "video not found: "+id)
	}
	return &v, nil
}

func (r *fakeVideoRepo) GetByChannelID(ctx context.Context, channelID string, limit, offset int) ([]*model.Video, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*model.Video{}
	for _, v := range r.videos {
		if v.ChannelID == channelID {
			v := v
			out = append(out, &v)
		}
	}
	return out, nil
}

func (r *fakeVideoRepo) List(ctx context.Context, limit, offset int) ([]*model.Video, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*model.Video{}
	for _, v := range r.videos {
		v := v
		out = append(out, &v)
	}
	return out, nil
}

func (r *fakeVideoRepo) snapshot() map[string]model.Video {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]model.Video, len(r.videos))
	for k, v := range r.videos {
		out[k] = v
	}
	return out
}

// fakeYouTube serves catalogs and videos from maps and counts calls
type fakeYouTube struct {
	mu sync.Mutex

	handles   map[string]*youtube.ChannelInfo
	catalogs  map[string]string   // channel id -> uploads playlist
	playlists map[string][]string // uploads playlist -> video ids
	videos    map[string]*ytapi.Video

	resolveErr map[string]error // by channel id
	listErr    map[string]error // by catalog id
	fetchErr   map[string]error // by first video id in the request
	panicOn    map[string]bool  // by catalog id

	resolveCalls map[string]int
	listCalls    []int
	fetchCalls   int
}

func newFakeYouTube() *fakeYouTube {
	return &fakeYouTube{
		handles:      map[string]*youtube.ChannelInfo{},
		catalogs:     map[string]string{},
		playlists:    map[string][]string{},
		videos:       map[string]*ytapi.Video{},
		resolveErr:   map[string]error{},
		listErr:      map[string]error{},
		fetchErr:     map[string]error{},
		panicOn:      map[string]bool{},
		resolveCalls: map[string]int{},
	}
}

// addChannel registers a catalog with n videos named <channelID>-vN
func (f *fakeYouTube) addChannel(channelID string, n int) []string {
	catalogID := "UU" + channelID
	f.catalogs[channelID] = catalogID
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("%s-v%d", channelID, i)
		ids = append(ids, id)
		f.videos[id] = rawVideo(id, "Video "+id, uint64(100*(i+1)))
	}
	f.playlists[catalogID] = ids
	return ids
}

func (f *fakeYouTube) ResolveHandle(ctx context.Context, handle string) (*youtube.ChannelInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	info, ok := f.handles[handle]
	if !ok {
		return nil, apperrors.New(apperrors.CodeNotFound, "no channel found for handle "+handle)
	}
	return info, nil
}

func (f *fakeYouTube) ResolveCatalogID(ctx context.Context, channelID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resolveCalls[channelID]++
	if err := f.resolveErr[channelID]; err != nil {
		return "", err
	}
	catalogID, ok := f.catalogs[channelID]
	if !ok {
		return "", apperrors.New(apperrors.CodeNotFound, "channel not found upstream: "+channelID)
	}
	return catalogID, nil
}

func (f *fakeYouTube) ListVideoIDs(ctx context.Context, catalogID string, maxResults int) ([]string, error) {
	f.mu.Lock()
	f.listCalls = append(f.listCalls, maxResults)
	shouldPanic := f.panicOn[catalogID]
	err := f.listErr[catalogID]
	ids := f.playlists[catalogID]
	f.mu.Unlock()

	if shouldPanic {
		panic("unexpected nil page for " + catalogID)
	}
	if err != nil {
		return nil, err
	}
	limit := youtube.ClampPageSize(maxResults)
	if len(ids) > limit {
		ids = ids[:limit]
	}
	return append([]string{}, ids...), nil
}

func (f *fakeYouTube) FetchDetails(ctx context.Context, videoIDs []string) (map[string]*ytapi.Video, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetchCalls++
	if len(videoIDs) > 0 {
		if err := f.fetchErr[videoIDs[0]]; err != nil {
			return nil, err
		}
	}
	out := map[string]*ytapi.Video{}
	for _, id := range videoIDs {
		if v, ok := f.videos[id]; ok {
			out[id] = v
		}
	}
	return out, nil
}

func rawVideo(id, title string, views uint64) *ytapi.Video {
	return &ytapi.Video{
		Id: id,
		Snippet: &ytapi.VideoSnippet{
			Title:       title,
			PublishedAt: "2024-04-01T10:00:00Z",
			Thumbnails: &ytapi.ThumbnailDetails{
				High: &ytapi.Thumbnail{Url: "https://i.ytimg.com/vi/" + id + "/hqdefault.jpg"},
			},
		},
		Statistics:     &ytapi.VideoStatistics{ViewCount: views, CommentCount: 3},
		ContentDetails: &ytapi.VideoContentDetails{Duration: "PT10M"},
	}
}

// fakeLocker records lock keys and can simulate contention
type fakeLocker struct {
	mu       sync.Mutex
	held     map[string]bool
	keys     []string
	released []string
	err      error
}

func newFakeLocker() *fakeLocker {
	return &fakeLocker{held: map[string]bool{}}
}

func (l *fakeLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (runlock.Release, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.keys = append(l.keys, key)
	if l.err != nil {
		return nil, l.err
	}
	if l.held[key] {
		return nil, fmt.Errorf("%s: %w", key, runlock.ErrLocked)
	}
	l.held[key] = true
	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.held, key)
		l.released = append(l.released, key)
		return nil
	}, nil
}

func (l *fakeLocker) Close() error { return nil }

func strPtr(s string) *string { return &s }

func tierPtr(t model.ScheduleTier) *model.ScheduleTier { return &t }

func activeChannel(id string, tier *model.ScheduleTier) *model.Channel {
	return &model.Channel{ID: id, Name: "Channel " + id, Schedule: tier, Active: true}
}
