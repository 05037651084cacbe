package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zulandar/hangar/internal/acars"
	"github.com/zulandar/hangar/internal/aircraft"
	"github.com/zulandar/hangar/internal/bid"
	"github.com/zulandar/hangar/internal/models"
	"github.com/zulandar/hangar/internal/notify"
	"github.com/zulandar/hangar/internal/pirep"
)

// registerRoutes sets up every API route on the gin router.
func (s *Server) registerRoutes(router *gin.Engine) {
	api := router.Group("/api")

	pireps := api.Group("/pireps")
	pireps.POST("/prefile", s.handlePrefile)
	pireps.GET("/:id", s.handleGetReport)
	pireps.POST("/:id/file", s.handleTransition(s.svc.File))
	pireps.POST("/:id/submit", s.handleTransition(s.svc.Submit))
	pireps.PUT("/:id/cancel", s.handleTransition(s.svc.Cancel))
	pireps.DELETE("/:id/cancel", s.handleTransition(s.svc.Cancel))
	pireps.POST("/:id/accept", s.handleTransition(s.svc.Accept))
	pireps.POST("/:id/reject", s.handleTransition(s.svc.Reject))
	pireps.GET("/:id/route", s.handleGetRoute)
	pireps.POST("/:id/route", s.handleSaveRoute)
	pireps.GET("/:id/acars/position", s.handleGetPositions)
	pireps.POST("/:id/acars/position", s.handlePostPositions)

	pilots := api.Group("/pilots")
	pilots.GET("/:id/pireps", s.handlePilotReports)
	pilots.GET("/:id/notifications", s.handleNotifications)

	fleet := api.Group("/fleet")
	fleet.GET("/aircraft/:id", s.handleGetAircraft)
	fleet.POST("/recalculate", s.handleRecalculateFleet)

	api.POST("/bids", s.handleAddBid)
	api.DELETE("/bids", s.handleRemoveBid)
}

type prefileRequest struct {
	PilotID         uint    `json:"pilot_id"`
	AirlineID       uint    `json:"airline_id"`
	AircraftID      *uint   `json:"aircraft_id"`
	FlightID        *string `json:"flight_id"`
	FlightNumber    string  `json:"flight_number"`
	DptAirportID    string  `json:"dpt_airport_id"`
	ArrAirportID    string  `json:"arr_airport_id"`
	FlightTime      int     `json:"flight_time"`
	Distance        float64 `json:"distance"`
	PlannedDistance float64 `json:"planned_distance"`
	FuelUsed        float64 `json:"fuel_used"`
	Route           string  `json:"route"`
	Notes           string  `json:"notes"`
}

func (s *Server) handlePrefile(c *gin.Context) {
	var req prefileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, "invalid body: "+err.Error())
		return
	}
	p, err := s.svc.Create(c.Request.Context(), &models.Pirep{
		PilotID:         req.PilotID,
		AirlineID:       req.AirlineID,
		AircraftID:      req.AircraftID,
		FlightID:        req.FlightID,
		FlightNumber:    req.FlightNumber,
		DptAirportID:    req.DptAirportID,
		ArrAirportID:    req.ArrAirportID,
		FlightTime:      req.FlightTime,
		Distance:        req.Distance,
		PlannedDistance: req.PlannedDistance,
		FuelUsed:        req.FuelUsed,
		Route:           req.Route,
		Notes:           req.Notes,
	}, pirep.CreateOpts{Start: true})
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, http.StatusCreated, reportView(p))
}

func (s *Server) handleGetReport(c *gin.Context) {
	p, err := s.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, http.StatusOK, reportView(p))
}

// handleTransition adapts a single-ID lifecycle operation.
func (s *Server) handleTransition(op func(ctx context.Context, id string) (*models.Pirep, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := op(c.Request.Context(), c.Param("id"))
		if err != nil {
			s.fail(c, err)
			return
		}
		ok(c, http.StatusOK, reportView(p))
	}
}

type routePoint struct {
	Name  string `json:"name"`
	Order int    `json:"order"`
}

func (s *Server) handleGetRoute(c *gin.Context) {
	names, err := s.svc.Route(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, http.StatusOK, routePoints(names))
}

type routeRequest struct {
	Route *string `json:"route"`
}

// handleSaveRoute stores a new route string when one is given, otherwise
// rebuilds the route entries from the report's stored route.
func (s *Server) handleSaveRoute(c *gin.Context) {
	var req routeRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			s.badRequest(c, "invalid body: "+err.Error())
			return
		}
	}
	var names []string
	var err error
	if req.Route != nil {
		names, err = s.svc.UpdateRoute(c.Request.Context(), c.Param("id"), *req.Route)
	} else {
		names, err = s.svc.SaveRoute(c.Request.Context(), c.Param("id"))
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, http.StatusOK, routePoints(names))
}

func routePoints(names []string) []routePoint {
	out := make([]routePoint, len(names))
	for i, n := range names {
		out[i] = routePoint{Name: n, Order: i + 1}
	}
	return out
}

type positionView struct {
	Lat         float64    `json:"lat"`
	Lon         float64    `json:"lon"`
	Altitude    int        `json:"altitude"`
	GroundSpeed int        `json:"gs"`
	Heading     int        `json:"heading"`
	SimTime     *time.Time `json:"sim_time,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func (s *Server) handleGetPositions(c *gin.Context) {
	rows, err := s.svc.Positions(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	out := make([]positionView, len(rows))
	for i, r := range rows {
		out[i] = positionView{
			Lat:         r.Lat,
			Lon:         r.Lon,
			Altitude:    r.Altitude,
			GroundSpeed: r.GroundSpeed,
			Heading:     r.Heading,
			SimTime:     r.SimTime,
			CreatedAt:   r.CreatedAt,
		}
	}
	ok(c, http.StatusOK, out)
}

type positionsRequest struct {
	Positions []acars.Position `json:"positions"`
}

func (s *Server) handlePostPositions(c *gin.Context) {
	var req positionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, "invalid body: "+err.Error())
		return
	}
	rows, err := s.svc.PostPositions(c.Request.Context(), c.Param("id"), req.Positions)
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"count": len(rows)})
}

func (s *Server) handlePilotReports(c *gin.Context) {
	pilotID, valid := uintParam(c, "id")
	if !valid {
		s.badRequest(c, "invalid pilot id")
		return
	}
	ps, err := s.svc.List(c.Request.Context(), pirep.ListFilters{
		PilotID: pilotID,
		State:   models.PirepState(c.Query("state")),
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, http.StatusOK, reportViews(ps))
}

func (s *Server) handleNotifications(c *gin.Context) {
	pilotID, valid := uintParam(c, "id")
	if !valid {
		s.badRequest(c, "invalid pilot id")
		return
	}
	list, err := notify.List(s.svc.DB().WithContext(c.Request.Context()), pilotID, c.Query("unread") == "true")
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, http.StatusOK, list)
}

func (s *Server) handleGetAircraft(c *gin.Context) {
	id, valid := uintParam(c, "id")
	if !valid {
		s.badRequest(c, "invalid aircraft id")
		return
	}
	a, err := aircraft.Get(s.svc.DB().WithContext(c.Request.Context()), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, http.StatusOK, a)
}

func (s *Server) handleRecalculateFleet(c *gin.Context) {
	res, err := aircraft.RecalculateAll(s.svc.DB().WithContext(c.Request.Context()), s.log)
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, http.StatusOK, res)
}

type bidRequest struct {
	PilotID  uint   `json:"pilot_id"`
	FlightID string `json:"flight_id"`
}

func (s *Server) handleAddBid(c *gin.Context) {
	var req bidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, "invalid body: "+err.Error())
		return
	}
	b, err := bid.Add(s.svc.DB().WithContext(c.Request.Context()), req.PilotID, req.FlightID)
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, http.StatusCreated, b)
}

func (s *Server) handleRemoveBid(c *gin.Context) {
	var req bidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, "invalid body: "+err.Error())
		return
	}
	if err := bid.Remove(s.svc.DB().WithContext(c.Request.Context()), req.PilotID, req.FlightID); err != nil {
		s.fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"removed": true})
}
