package api

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/zulandar/hangar/internal/config"
	"github.com/zulandar/hangar/internal/dbtest"
	"github.com/zulandar/hangar/internal/logging"
	"github.com/zulandar/hangar/internal/models"
	"github.com/zulandar/hangar/internal/notify"
	"github.com/zulandar/hangar/internal/pirep"
	"github.com/zulandar/hangar/internal/rank"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	db       *gorm.DB
	svc      *pirep.Service
	router   *gin.Engine
	pilot    *models.Pilot
	admin    *models.Pilot
	airline  *models.Airline
	aircraft *models.Aircraft
	flight   *models.Flight
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := dbtest.Open(t)
	cadet := models.Rank{Name: "Cadet"}
	dbtest.Create(t, db, &cadet)
	airline := dbtest.Airline(t, db, "VMS")
	p := dbtest.Pilot(t, db, airline.ID, "alice")
	admin := dbtest.Pilot(t, db, airline.ID, "ops")
	if err := db.Model(admin).Update("role", models.RoleAdmin).Error; err != nil {
		t.Fatalf("promote admin: %v", err)
	}
	ac := dbtest.Aircraft(t, db, "N101VA", "KJFK")
	flight := &models.Flight{ID: "VMS100", AirlineID: airline.ID, FlightNumber: "100", DptAirportID: "KJFK", ArrAirportID: "KBOS"}
	dbtest.Create(t, db, flight)

	svc, err := pirep.New(pirep.Opts{
		DB:       db,
		Settings: config.Settings{Pireps: config.PirepSettings{DuplicateCheckTime: 10}},
		Ranks:    rank.NewTable([]models.Rank{cadet}),
		Notifier: notify.NewInbox(db),
		Logger:   logging.Discard(),
	})
	if err != nil {
		t.Fatalf("pirep.New: %v", err)
	}
	return &testEnv{
		db:       db,
		svc:      svc,
		router:   NewRouter(svc, logging.Discard()),
		pilot:    p,
		admin:    admin,
		airline:  airline,
		aircraft: ac,
		flight:   flight,
	}
}

// do performs a request and decodes the envelope into out when given.
func (e *testEnv) do(t *testing.T, method, path string, body interface{}, out interface{}) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	if out != nil {
		envelope := struct {
			Data  json.RawMessage `json:"data"`
			Error string          `json:"error"`
		}{}
		if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
			t.Fatalf("decode %s %s response %q: %v", method, path, w.Body.String(), err)
		}
		if len(envelope.Data) > 0 {
			if err := json.Unmarshal(envelope.Data, out); err != nil {
				t.Fatalf("decode data: %v", err)
			}
		}
	}
	return w.Code
}

func (e *testEnv) prefile(t *testing.T, extra map[string]interface{}) ReportView {
	t.Helper()
	body := map[string]interface{}{
		"pilot_id":       e.pilot.ID,
		"airline_id":     e.airline.ID,
		"aircraft_id":    e.aircraft.ID,
		"dpt_airport_id": "KJFK",
		"arr_airport_id": "KBOS",
		"flight_time":    75,
	}
	for k, v := range extra {
		body[k] = v
	}
	var view ReportView
	if code := e.do(t, http.MethodPost, "/api/pireps/prefile", body, &view); code != http.StatusCreated {
		t.Fatalf("prefile status = %d", code)
	}
	return view
}

func TestPrefileAndGet_Units(t *testing.T) {
	e := newTestEnv(t)
	created := e.prefile(t, map[string]interface{}{
		"distance":         100.0,
		"planned_distance": 120.0,
		"fuel_used":        1000.0,
		"route":            "DPK BOS",
	})
	if created.State != models.PirepInProgress {
		t.Errorf("state = %q, want in_progress", created.State)
	}

	var view ReportView
	if code := e.do(t, http.MethodGet, "/api/pireps/"+created.ID, nil, &view); code != http.StatusOK {
		t.Fatalf("get status = %d", code)
	}
	near := func(a, b float64) bool { return math.Abs(a-b) < 0.01 }
	if !near(view.Distance.Nmi, 100) || !near(view.Distance.Km, 185.2) || !near(view.Distance.Mi, 115.08) {
		t.Errorf("distance = %+v", view.Distance)
	}
	if !near(view.PlannedDistance.Km, 222.24) {
		t.Errorf("planned distance = %+v", view.PlannedDistance)
	}
	if !near(view.FuelUsed.Lbs, 1000) || !near(view.FuelUsed.Kg, 453.59) {
		t.Errorf("fuel = %+v", view.FuelUsed)
	}
}

func TestPrefile_Validation(t *testing.T) {
	e := newTestEnv(t)
	code := e.do(t, http.MethodPost, "/api/pireps/prefile", map[string]interface{}{"airline_id": e.airline.ID}, nil)
	if code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/pireps/prefile", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("malformed body status = %d, want 400", w.Code)
	}
}

func TestGetReport_NotFound(t *testing.T) {
	e := newTestEnv(t)
	if code := e.do(t, http.MethodGet, "/api/pireps/pirep-00000000", nil, nil); code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", code)
	}
}

func TestCancelThenPosition_Rejected(t *testing.T) {
	for _, method := range []string{http.MethodPut, http.MethodDelete} {
		t.Run(method, func(t *testing.T) {
			e := newTestEnv(t)
			r := e.prefile(t, nil)

			positions := map[string]interface{}{
				"positions": []map[string]interface{}{{"lat": 40.6, "lon": -73.7, "altitude": 3000, "gs": 180}},
			}
			var res map[string]int
			if code := e.do(t, http.MethodPost, "/api/pireps/"+r.ID+"/acars/position", positions, &res); code != http.StatusOK {
				t.Fatalf("position status = %d", code)
			}
			if res["count"] != 1 {
				t.Errorf("count = %d, want 1", res["count"])
			}

			var view ReportView
			if code := e.do(t, method, "/api/pireps/"+r.ID+"/cancel", nil, &view); code != http.StatusOK {
				t.Fatalf("cancel status = %d", code)
			}
			if view.State != models.PirepCancelled {
				t.Errorf("state = %q, want cancelled", view.State)
			}

			if code := e.do(t, http.MethodPost, "/api/pireps/"+r.ID+"/acars/position", positions, nil); code != http.StatusBadRequest {
				t.Errorf("position after cancel status = %d, want 400", code)
			}

			var track []positionView
			e.do(t, http.MethodGet, "/api/pireps/"+r.ID+"/acars/position", nil, &track)
			if len(track) != 0 {
				t.Errorf("track = %d points after cancel, want 0", len(track))
			}
		})
	}
}

func TestLifecycleOverHTTP(t *testing.T) {
	e := newTestEnv(t)
	r := e.prefile(t, nil)

	var view ReportView
	if code := e.do(t, http.MethodPost, "/api/pireps/"+r.ID+"/file", nil, &view); code != http.StatusOK {
		t.Fatalf("file status = %d", code)
	}
	if code := e.do(t, http.MethodPost, "/api/pireps/"+r.ID+"/submit", nil, &view); code != http.StatusOK {
		t.Fatalf("submit status = %d", code)
	}
	if view.State != models.PirepPendingAccept || view.SubmittedAt == nil {
		t.Errorf("after submit: %+v", view)
	}
	if code := e.do(t, http.MethodPost, "/api/pireps/"+r.ID+"/accept", nil, &view); code != http.StatusOK {
		t.Fatalf("accept status = %d", code)
	}

	// Accepted reports cannot be cancelled.
	if code := e.do(t, http.MethodPut, "/api/pireps/"+r.ID+"/cancel", nil, nil); code != http.StatusBadRequest {
		t.Errorf("cancel accepted status = %d, want 400", code)
	}

	var ac models.Aircraft
	if code := e.do(t, http.MethodGet, "/api/fleet/aircraft/"+uintStr(e.aircraft.ID), nil, &ac); code != http.StatusOK {
		t.Fatalf("aircraft status = %d", code)
	}
	if ac.FlightTime != 75 || ac.AirportID != "KBOS" {
		t.Errorf("aircraft = %+v", ac)
	}

	var adminInbox []models.Notification
	e.do(t, http.MethodGet, "/api/pilots/"+uintStr(e.admin.ID)+"/notifications", nil, &adminInbox)
	if len(adminInbox) != 1 || adminInbox[0].Kind != string(notify.KindSubmitted) {
		t.Errorf("admin inbox = %+v", adminInbox)
	}
	var pilotInbox []models.Notification
	e.do(t, http.MethodGet, "/api/pilots/"+uintStr(e.pilot.ID)+"/notifications?unread=true", nil, &pilotInbox)
	if len(pilotInbox) != 1 || pilotInbox[0].Kind != string(notify.KindAccepted) {
		t.Errorf("pilot inbox = %+v", pilotInbox)
	}

	if code := e.do(t, http.MethodPost, "/api/pireps/"+r.ID+"/reject", nil, &view); code != http.StatusOK {
		t.Fatalf("reject status = %d", code)
	}
	if view.State != models.PirepRejected {
		t.Errorf("state = %q, want rejected", view.State)
	}
}

func TestPilotReports_StateFilter(t *testing.T) {
	e := newTestEnv(t)
	a := e.prefile(t, nil)
	b := e.prefile(t, nil)
	if _, err := e.svc.Cancel(context.Background(), b.ID); err != nil {
		t.Fatalf("Cancel: %v", err)
	}

	path := "/api/pilots/" + uintStr(e.pilot.ID) + "/pireps"
	var list []ReportView
	if code := e.do(t, http.MethodGet, path, nil, &list); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if len(list) != 1 || list[0].ID != a.ID {
		t.Errorf("default list = %+v, want only %s", list, a.ID)
	}

	list = nil
	e.do(t, http.MethodGet, path+"?state=cancelled", nil, &list)
	if len(list) != 1 || list[0].ID != b.ID {
		t.Errorf("cancelled list = %+v, want only %s", list, b.ID)
	}

	if code := e.do(t, http.MethodGet, path+"?state=flying", nil, nil); code != http.StatusBadRequest {
		t.Errorf("bogus state status = %d, want 400", code)
	}
	if code := e.do(t, http.MethodGet, "/api/pilots/abc/pireps", nil, nil); code != http.StatusBadRequest {
		t.Errorf("bad pilot id status = %d, want 400", code)
	}
}

func TestRouteEndpoints(t *testing.T) {
	e := newTestEnv(t)
	r := e.prefile(t, map[string]interface{}{"route": "A B C"})

	var points []routePoint
	if code := e.do(t, http.MethodPost, "/api/pireps/"+r.ID+"/route", map[string]string{"route": "F G"}, &points); code != http.StatusOK {
		t.Fatalf("save route status = %d", code)
	}
	points = nil
	e.do(t, http.MethodGet, "/api/pireps/"+r.ID+"/route", nil, &points)
	if len(points) != 2 || points[0].Name != "F" || points[1].Order != 2 {
		t.Errorf("route = %+v", points)
	}

	// No body rebuilds from the stored route string.
	points = nil
	if code := e.do(t, http.MethodPost, "/api/pireps/"+r.ID+"/route", nil, &points); code != http.StatusOK {
		t.Fatalf("rebuild route status = %d", code)
	}
	if len(points) != 2 {
		t.Errorf("rebuilt route = %+v", points)
	}
}

func TestBidEndpoints(t *testing.T) {
	e := newTestEnv(t)
	body := map[string]interface{}{"pilot_id": e.pilot.ID, "flight_id": e.flight.ID}

	var b models.Bid
	if code := e.do(t, http.MethodPost, "/api/bids", body, &b); code != http.StatusCreated {
		t.Fatalf("add status = %d", code)
	}
	if b.FlightID != e.flight.ID {
		t.Errorf("bid = %+v", b)
	}
	if code := e.do(t, http.MethodPost, "/api/bids", body, nil); code != http.StatusBadRequest {
		t.Errorf("duplicate bid status = %d, want 400", code)
	}
	if code := e.do(t, http.MethodDelete, "/api/bids", body, nil); code != http.StatusOK {
		t.Errorf("remove status = %d", code)
	}
	if code := e.do(t, http.MethodDelete, "/api/bids", body, nil); code != http.StatusNotFound {
		t.Errorf("second remove status = %d, want 404", code)
	}
}

func TestFleetRecalculate(t *testing.T) {
	e := newTestEnv(t)
	if err := e.db.Model(e.aircraft).Update("flight_time", 999).Error; err != nil {
		t.Fatalf("drift: %v", err)
	}
	var res struct {
		Updated int `json:"updated"`
		Failed  int `json:"failed"`
	}
	if code := e.do(t, http.MethodPost, "/api/fleet/recalculate", nil, &res); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if res.Updated != 1 || res.Failed != 0 {
		t.Errorf("result = %+v", res)
	}
	var ac models.Aircraft
	dbtest.Reload(t, e.db, &ac, e.aircraft.ID)
	if ac.FlightTime != 0 {
		t.Errorf("flight time = %d, want 0", ac.FlightTime)
	}

	if code := e.do(t, http.MethodGet, "/api/fleet/aircraft/9999", nil, nil); code != http.StatusNotFound {
		t.Errorf("missing aircraft status = %d, want 404", code)
	}
}

func TestStatusFor(t *testing.T) {
	e := newTestEnv(t)
	_, err := e.svc.Get(context.Background(), "nope")
	if got := statusFor(err); got != http.StatusNotFound {
		t.Errorf("statusFor(not found) = %d", got)
	}
	if got := statusFor(context.Canceled); got != http.StatusInternalServerError {
		t.Errorf("statusFor(other) = %d", got)
	}
}

func TestStart_NilService(t *testing.T) {
	err := Start(context.Background(), StartOpts{})
	if err == nil || !strings.Contains(err.Error(), "service is required") {
		t.Errorf("error = %v", err)
	}
}

func TestNewDistanceAndFuel(t *testing.T) {
	d := NewDistance(0)
	if d != (Distance{}) {
		t.Errorf("NewDistance(0) = %+v", d)
	}
	f := NewFuel(2.5)
	if f.Lbs != 2.5 || f.Kg != 1.13 {
		t.Errorf("NewFuel(2.5) = %+v", f)
	}
}

func uintStr(n uint) string {
	return strconv.FormatUint(uint64(n), 10)
}
