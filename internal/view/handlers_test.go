package view

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/ianwelles/NihonGo-sub000/internal/trip"
)

func newTestApp(t *testing.T) (*fiber.App, *Service) {
	t.Helper()
	store := trip.NewStore()
	store.Replace(fixtureSnapshot())
	svc := NewService(store, nil, nil, nil, time.Hour)

	app := fiber.New()
	RegisterRoutes(app.Group("/view"), svc, func(c *fiber.Ctx) error { return c.Next() })
	return app, svc
}

func postJSON(t *testing.T, app *fiber.App, path string, body any) (*http.Response, Update) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(http.MethodPost, path, reader)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request %s: %v", path, err)
	}
	var upd Update
	_ = json.NewDecoder(resp.Body).Decode(&upd)
	return resp, upd
}

func TestViewHandlersFullFlow(t *testing.T) {
	app, _ := newTestApp(t)

	resp, created := postJSON(t, app, "/view/", map[string]string{"viewport": "desktop"})
	if resp.StatusCode != http.StatusCreated || created.ViewID == "" {
		t.Fatalf("create failed: %d", resp.StatusCode)
	}
	id := created.ViewID

	resp, upd := postJSON(t, app, "/view/"+id+"/city", map[string]string{"city": "Kyoto"})
	if resp.StatusCode != http.StatusOK || upd.State.ActiveCity != "Kyoto" {
		t.Fatalf("select city failed: %d %+v", resp.StatusCode, upd.State)
	}
	if upd.State.Toggles != allToggles(true) {
		t.Fatalf("expected toggles on after city selection")
	}

	resp, upd = postJSON(t, app, "/view/"+id+"/day", map[string]string{"day_id": "4-Kyoto"})
	if resp.StatusCode != http.StatusOK || upd.State.OpenDay != "4-Kyoto" {
		t.Fatalf("open day failed")
	}

	resp, upd = postJSON(t, app, "/view/"+id+"/toggle", map[string]string{"category": "food_rec"})
	if resp.StatusCode != http.StatusOK || !upd.State.Toggles.FoodRec {
		t.Fatalf("toggle failed: %+v", upd.State.Toggles)
	}

	req := httptest.NewRequest(http.MethodDelete, "/view/"+id+"/day", nil)
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("close day failed")
	}

	req = httptest.NewRequest(http.MethodGet, "/view/"+id, nil)
	resp, err = app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("get failed")
	}
}

func TestViewHandlersPopupAndMapEvent(t *testing.T) {
	app, _ := newTestApp(t)
	_, created := postJSON(t, app, "/view/", nil)
	id := created.ViewID

	resp, upd := postJSON(t, app, "/view/"+id+"/popup", map[string]string{"place_id": "kinkakuji"})
	if resp.StatusCode != http.StatusOK || len(upd.OpenPopups) != 1 {
		t.Fatalf("open popup failed: %+v", upd.OpenPopups)
	}

	resp, _ = postJSON(t, app, "/view/"+id+"/map/event", MapEvent{Type: "moveend", UserInitiated: false})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("map event failed: %d", resp.StatusCode)
	}

	req := httptest.NewRequest(http.MethodDelete, "/view/"+id+"/popup/kinkakuji", nil)
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("close popup failed")
	}
}

func TestViewHandlersLocate(t *testing.T) {
	app, _ := newTestApp(t)
	_, created := postJSON(t, app, "/view/", nil)
	id := created.ViewID

	resp, upd := postJSON(t, app, "/view/"+id+"/locate", nil)
	if resp.StatusCode != http.StatusOK || !upd.LocateActive {
		t.Fatalf("locate start failed")
	}

	req := httptest.NewRequest(http.MethodDelete, "/view/"+id+"/locate", nil)
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("locate stop failed")
	}
}

func TestViewHandlersBadRequests(t *testing.T) {
	app, _ := newTestApp(t)
	_, created := postJSON(t, app, "/view/", nil)
	id := created.ViewID

	resp, _ := postJSON(t, app, "/view/"+id+"/city", map[string]string{})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected bad request for missing city")
	}

	resp, _ = postJSON(t, app, "/view/"+id+"/toggle", map[string]string{"category": "museum"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected bad request for unknown category")
	}

	resp, _ = postJSON(t, app, "/view/"+id+"/toggle", map[string]string{"category": "hotel"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected bad request for non-toggleable category")
	}

	resp, _ = postJSON(t, app, "/view/missing/city", map[string]string{"city": "Kyoto"})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected not found for unknown session")
	}
}
