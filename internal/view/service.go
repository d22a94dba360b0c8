package view

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ianwelles/NihonGo-sub000/internal/camera"
	"github.com/ianwelles/NihonGo-sub000/internal/detect"
	"github.com/ianwelles/NihonGo-sub000/internal/popup"
	"github.com/ianwelles/NihonGo-sub000/internal/shared/geo"
	"github.com/ianwelles/NihonGo-sub000/internal/stream"
	"github.com/ianwelles/NihonGo-sub000/internal/trip"
)

var (
	ErrNotFound      = errors.New("view session not found")
	ErrNotToggleable = errors.New("category has no toggle")
)

// locateWatchTTL bounds a geolocation watch; a new locate request replaces
// the running watch instead of stacking another one.
const locateWatchTTL = 30 * time.Second

// Update is the payload pushed to map clients after every state change.
type Update struct {
	ViewID       string       `json:"view_id"`
	State        State        `json:"state"`
	OpenPopups   []string     `json:"open_popups"`
	LocateActive bool         `json:"locate_active"`
	Places       []trip.Place `json:"places"`
	Camera       *camera.Plan `json:"camera,omitempty"`
	ClosedPopups []string     `json:"closed_popups,omitempty"`
}

// MapEvent is a movement report from the map client.
type MapEvent struct {
	Type          string              `json:"type"` // "move" or "moveend"
	Center        geo.LatLng          `json:"center"`
	Zoom          float64             `json:"zoom"`
	UserInitiated bool                `json:"user_initiated"`
	Dragging      bool                `json:"dragging"`
	Container     geo.Rect            `json:"container"`
	Popups        map[string]geo.Rect `json:"popups"`
}

// LayoutRequest patches layout facts; nil fields are untouched.
type LayoutRequest struct {
	SidebarOpen *bool          `json:"sidebar_open"`
	Fullscreen  *bool          `json:"fullscreen"`
	Viewport    *ViewportClass `json:"viewport"`
}

// session tracks one viewer. prev records the facts of the last
// recomputation so the next one can be classified into a single trigger.
type session struct {
	id          string
	state       State
	prev        marks
	lastTouch   time.Time
	locateUntil time.Time
}

type marks struct {
	city       string
	day        string
	sidebar    bool
	fullscreen bool
	hadPlaces  bool
}

// Service owns all view sessions. Every mutation funnels through a named
// action; reactions run synchronously under one lock, so the toggle policy
// always completes before the filter reads the toggles, and the camera
// always sees the filter output of the same update.
type Service struct {
	store    *trip.Store
	hub      *stream.Hub
	detector *detect.Detector
	monitor  *popup.Monitor
	ttl      time.Duration

	mu       sync.Mutex
	sessions map[string]*session
	now      func() time.Time
}

func NewService(store *trip.Store, hub *stream.Hub, detector *detect.Detector, monitor *popup.Monitor, ttl time.Duration) *Service {
	return &Service{
		store:    store,
		hub:      hub,
		detector: detector,
		monitor:  monitor,
		ttl:      ttl,
		sessions: map[string]*session{},
		now:      time.Now,
	}
}

// Create opens a new view session. Desktop viewports start with the sidebar
// open; that is the only selection default derived from the environment.
func (s *Service) Create(viewport ViewportClass) Update {
	if viewport != ViewportMobile {
		viewport = ViewportDesktop
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked()

	sess := &session{
		id:        uuid.NewString(),
		state:     newState(viewport),
		lastTouch: s.now(),
	}
	s.sessions[sess.id] = sess
	return s.recomputeLocked(sess, false)
}

// Get returns the current update without mutating anything.
func (s *Service) Get(id string) (Update, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return Update{}, ErrNotFound
	}
	return s.updateLocked(sess, nil, nil), nil
}

// SelectCity activates a city. Like any city activation it closes the open
// day, and the toggle policy then rewrites the toggles.
func (s *Service) SelectCity(id, city string) (Update, error) {
	return s.act(id, func(sess *session) bool {
		sess.state.ActiveCity = city
		sess.state.OpenDay = ""
		sess.state.applyTogglePolicy()
		return false
	})
}

// ClearCity returns to the whole-trip overview.
func (s *Service) ClearCity(id string) (Update, error) {
	return s.act(id, func(sess *session) bool {
		sess.state.ActiveCity = ""
		sess.state.OpenDay = ""
		sess.state.applyTogglePolicy()
		return false
	})
}

// OpenDay opens a day by identifier, activating its city when the
// identifier resolves.
func (s *Service) OpenDay(id, dayID string) (Update, error) {
	return s.act(id, func(sess *session) bool {
		if day, ok := s.store.Snapshot().Day(dayID); ok {
			sess.state.ActiveCity = day.City
		}
		sess.state.OpenDay = dayID
		sess.state.applyTogglePolicy()
		return false
	})
}

// CloseDay closes the open day, staying on the active city.
func (s *Service) CloseDay(id string) (Update, error) {
	return s.act(id, func(sess *session) bool {
		sess.state.OpenDay = ""
		sess.state.applyTogglePolicy()
		return false
	})
}

// ToggleCategory flips exactly one toggle. The policy does not rerun here;
// it only overwrites toggles when the selection itself changes.
func (s *Service) ToggleCategory(id string, category trip.Category) (Update, error) {
	if !category.Toggleable() {
		return Update{}, ErrNotToggleable
	}
	return s.act(id, func(sess *session) bool {
		sess.state.Toggles.Flip(category)
		return false
	})
}

// SetLayout applies sidebar/fullscreen/viewport changes.
func (s *Service) SetLayout(id string, req LayoutRequest) (Update, error) {
	return s.act(id, func(sess *session) bool {
		layoutChanged := false
		if req.SidebarOpen != nil && *req.SidebarOpen != sess.state.SidebarOpen {
			sess.state.SidebarOpen = *req.SidebarOpen
			layoutChanged = true
		}
		if req.Fullscreen != nil && *req.Fullscreen != sess.state.Fullscreen {
			sess.state.Fullscreen = *req.Fullscreen
			layoutChanged = true
		}
		if req.Viewport != nil {
			sess.state.Viewport = *req.Viewport
		}
		return layoutChanged
	})
}

// OpenPopup records an opened map popup for a place.
func (s *Service) OpenPopup(id, placeID string) (Update, error) {
	return s.act(id, func(sess *session) bool {
		sess.state.openPopups[placeID] = struct{}{}
		return false
	})
}

// ClosePopup removes a popup from the open set.
func (s *Service) ClosePopup(id, placeID string) (Update, error) {
	return s.act(id, func(sess *session) bool {
		delete(sess.state.openPopups, placeID)
		return false
	})
}

// StartLocate arms the bounded geolocation watch, replacing any watch
// already running.
func (s *Service) StartLocate(id string) (Update, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return Update{}, ErrNotFound
	}
	sess.lastTouch = s.now()
	sess.locateUntil = s.now().Add(locateWatchTTL)
	upd := s.updateLocked(sess, nil, nil)
	s.broadcast(upd)
	return upd, nil
}

// StopLocate tears the watch down early.
func (s *Service) StopLocate(id string) (Update, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return Update{}, ErrNotFound
	}
	sess.lastTouch = s.now()
	sess.locateUntil = time.Time{}
	upd := s.updateLocked(sess, nil, nil)
	s.broadcast(upd)
	return upd, nil
}

// HandleMapEvent routes map movement. Only user-initiated movement feeds
// the auto-city detector and the popup monitor; programmatic transitions
// just clear the animating flag once they settle.
func (s *Service) HandleMapEvent(id string, ev MapEvent) (Update, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return Update{}, ErrNotFound
	}
	sess.lastTouch = s.now()

	switch ev.Type {
	case "moveend":
		return s.moveEndLocked(sess, ev), nil
	case "move":
		return s.moveLocked(sess, ev), nil
	default:
		return s.updateLocked(sess, nil, nil), nil
	}
}

func (s *Service) moveEndLocked(sess *session, ev MapEvent) Update {
	if !ev.UserInitiated {
		if sess.state.Animating {
			// Programmatic transition settled.
			sess.state.Animating = false
			upd := s.updateLocked(sess, nil, nil)
			s.broadcast(upd)
			return upd
		}
		return s.updateLocked(sess, nil, nil)
	}

	// A user gesture interrupts any in-flight transition.
	sess.state.Animating = false

	if s.detector != nil {
		if city, changed := s.detector.Detect(ev.Center, ev.Zoom, sess.state.ActiveCity); changed {
			sess.state.ActiveCity = city
			sess.state.OpenDay = ""
			sess.state.applyTogglePolicy()
			upd := s.recomputeLocked(sess, false)
			s.broadcast(upd)
			return upd
		}
	}
	return s.updateLocked(sess, nil, nil)
}

func (s *Service) moveLocked(sess *session, ev MapEvent) Update {
	if s.monitor == nil {
		return s.updateLocked(sess, nil, nil)
	}

	open := map[string]geo.Rect{}
	for id, rect := range ev.Popups {
		if _, ok := sess.state.openPopups[id]; ok {
			open[id] = rect
		}
	}

	closed := s.monitor.Occluded(ev.Container, open, ev.Dragging && ev.UserInitiated, sess.state.Animating)
	if len(closed) == 0 {
		return s.updateLocked(sess, nil, nil)
	}
	for _, id := range closed {
		delete(sess.state.openPopups, id)
	}
	upd := s.updateLocked(sess, nil, closed)
	s.broadcast(upd)
	return upd
}

// RefreshAll recomputes every session, typically after the store's snapshot
// has been replaced wholesale. The first non-empty filtered list a session
// sees this way fires its initial-load camera trigger.
func (s *Service) RefreshAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sess := range s.sessions {
		s.broadcast(s.recomputeLocked(sess, false))
	}
}

// Sweep drops sessions idle longer than the TTL.
func (s *Service) Sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked()
}

func (s *Service) sweepLocked() {
	if s.ttl <= 0 {
		return
	}
	cutoff := s.now().Add(-s.ttl)
	for id, sess := range s.sessions {
		if sess.lastTouch.Before(cutoff) {
			delete(s.sessions, id)
		}
	}
}

// act runs one mutation and the full recomputation cycle under the lock.
// The mutation reports whether it changed the layout.
func (s *Service) act(id string, mutate func(*session) bool) (Update, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return Update{}, ErrNotFound
	}
	sess.lastTouch = s.now()

	layoutChanged := mutate(sess)
	upd := s.recomputeLocked(sess, layoutChanged)
	s.broadcast(upd)
	return upd, nil
}

// recomputeLocked runs filter, trigger classification and camera planning
// for the session's current state, then advances the previous-value marks.
func (s *Service) recomputeLocked(sess *session, layoutChanged bool) Update {
	snap := s.store.Snapshot()
	places := DisplaySet(snap, sess.state.ActiveCity, sess.state.OpenDay, sess.state.Toggles)

	ch := camera.Change{
		InitialLoad:   !sess.prev.hadPlaces && len(places) > 0,
		CityChanged:   sess.prev.city != sess.state.ActiveCity,
		DayChanged:    sess.prev.day != sess.state.OpenDay,
		LayoutChanged: layoutChanged,
	}
	trigger := camera.Classify(ch)

	var plan *camera.Plan
	if p, ok := camera.PlanFor(trigger, coordinates(places), camera.Layout{
		Mobile:      sess.state.Viewport == ViewportMobile,
		SidebarOpen: sess.state.SidebarOpen,
		Fullscreen:  sess.state.Fullscreen,
	}, sess.state.Overview()); ok {
		plan = &p
		sess.state.Animating = true
	}

	sess.prev = marks{
		city:       sess.state.ActiveCity,
		day:        sess.state.OpenDay,
		sidebar:    sess.state.SidebarOpen,
		fullscreen: sess.state.Fullscreen,
		hadPlaces:  sess.prev.hadPlaces || len(places) > 0,
	}

	return s.updateWith(sess, places, plan, nil)
}

// updateLocked rebuilds the update payload without re-classifying triggers.
func (s *Service) updateLocked(sess *session, plan *camera.Plan, closed []string) Update {
	snap := s.store.Snapshot()
	places := DisplaySet(snap, sess.state.ActiveCity, sess.state.OpenDay, sess.state.Toggles)
	return s.updateWith(sess, places, plan, closed)
}

func (s *Service) updateWith(sess *session, places []trip.Place, plan *camera.Plan, closed []string) Update {
	return Update{
		ViewID:       sess.id,
		State:        sess.state,
		OpenPopups:   sess.state.OpenPopupIDs(),
		LocateActive: s.now().Before(sess.locateUntil),
		Places:       places,
		Camera:       plan,
		ClosedPopups: closed,
	}
}

func (s *Service) broadcast(upd Update) {
	if s.hub == nil {
		return
	}
	payload, err := json.Marshal(upd)
	if err != nil {
		return
	}
	s.hub.Broadcast(upd.ViewID, payload)
}

func coordinates(places []trip.Place) []geo.LatLng {
	out := make([]geo.LatLng, 0, len(places))
	for _, p := range places {
		out = append(out, p.Coordinate)
	}
	return out
}
