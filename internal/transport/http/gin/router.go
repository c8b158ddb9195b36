package httpgin

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/clubdoor/clubdoor/internal/domain"
	redisrepo "github.com/clubdoor/clubdoor/internal/repository/redis"
	"github.com/clubdoor/clubdoor/internal/service"
	"github.com/clubdoor/clubdoor/internal/service/admin"
	"github.com/clubdoor/clubdoor/internal/service/admission"
	"github.com/clubdoor/clubdoor/internal/service/query"
	"github.com/clubdoor/clubdoor/internal/service/scan"
	"github.com/clubdoor/clubdoor/internal/service/waitlist"
)

func NewRouter(
	svcs *service.Services,
	idem *redisrepo.IdempotencyStore,
	limiter *redisrepo.SlidingWindowLimiter,
	logger *slog.Logger,
	middlewares ...gin.HandlerFunc,
) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery(), LoggingMiddleware(logger), RequestIDMiddleware(), CORS())
	for _, m := range middlewares {
		if m != nil {
			r.Use(m)
		}
	}

	// Swagger UI
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// health + metrics
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Public API
	r.GET("/events", handleListEvents(svcs))
	r.GET("/events/:id", handleGetEvent(svcs))
	r.GET("/events/:id/availability", handleGetAvailability(svcs))
	r.GET("/live", handleGetLiveEvent(svcs))

	r.POST("/events/:id/tickets", handleRequestTicket(svcs, idem, limiter))
	r.GET("/events/:id/tickets/me", handleGetMyTicket(svcs))
	r.GET("/tickets/:id", handleGetTicket(svcs))
	r.DELETE("/tickets/:id", handleCancelTicket(svcs))

	r.POST("/events/:id/waitlist", handleJoinWaitlist(svcs))
	r.DELETE("/events/:id/waitlist", handleLeaveWaitlist(svcs))
	r.GET("/events/:id/waitlist", handleWaitlistStatus(svcs))

	r.GET("/referrals/leaderboard", handleLeaderboard(svcs))

	// Door console
	r.POST("/scan", handleScan(svcs))

	// Admin API
	// TODO: add admin auth middleware once the SSO proxy lands
	adm := r.Group("/admin")
	{
		adm.POST("/events", handleCreateEvent(svcs))
		adm.PUT("/events/:id", handleUpdateEvent(svcs))
		adm.POST("/events/:id/live", handleSetLive(svcs))
		adm.DELETE("/events/:id/live", handleClearLive(svcs))
		adm.POST("/events/:id/tickets", handleAdminIssueTicket(svcs))
		adm.GET("/events/:id/waitlist", handleWaitlistEntries(svcs))
		adm.POST("/tickets/:id/unscan", handleUnscan(svcs))
		adm.POST("/referrals/recompute", handleRecompute(svcs))
	}

	return r
}

// --- Handlers with Swagger annotations ---

// @Summary  List events
// @Param    limit   query  int  false "page size"
// @Param    offset  query  int  false "offset"
// @Success  200  {array}  domain.Event
// @Router   /events [get]
func handleListEvents(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := parseIntDefault(c.Query("limit"), 0)
		offset := parseIntDefault(c.Query("offset"), 0)

		events, err := svcs.Query.ListEventsPublic(c.Request.Context(), limit, offset)
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONCached(c, http.StatusOK, events, 60)
	}
}

// @Summary  Get event
// @Param    id  path  int  true  "Event ID"
// @Success  200  {object}  domain.Event
// @Failure  404  {object}  ErrorResponse
// @Router   /events/{id} [get]
func handleGetEvent(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		e, err := svcs.Query.GetEventPublic(c.Request.Context(), eventID)
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONCached(c, http.StatusOK, e, 60)
	}
}

// @Summary  Get availability counters
// @Param    id  path  int  true  "Event ID"
// @Success  200  {object}  domain.Availability
// @Router   /events/{id}/availability [get]
func handleGetAvailability(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		a, err := svcs.Query.Availability(c.Request.Context(), eventID)
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONCached(c, http.StatusOK, a, 15)
	}
}

// @Summary  Get the live event
// @Success  200  {object}  domain.Event
// @Failure  404  {object}  ErrorResponse
// @Router   /live [get]
func handleGetLiveEvent(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		e, err := svcs.Query.LiveEvent(c.Request.Context())
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, e)
	}
}

// @Summary  Request a ticket (idempotent)
// @Param    id  path  int  true  "Event ID"
// @Param    req body  RequestTicketRequest true "payload"
// @Header   201 {string} Idempotency-Key "echo"
// @Success  201 {object} TicketResponse
// @Failure  400 {object} ErrorResponse
// @Failure  409 {object} ErrorResponse "duplicate / capacity / referral"
// @Failure  412 {object} ErrorResponse "sales closed"
// @Failure  429 {object} ErrorResponse "rate limited"
// @Failure  502 {object} TicketResponse "ticket issued, email failed"
// @Router   /events/{id}/tickets [post]
func handleRequestTicket(
	svcs *service.Services,
	idem *redisrepo.IdempotencyStore,
	limiter *redisrepo.SlidingWindowLimiter,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		var req RequestTicketRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		if limiter != nil {
			allowed, _, retryAfter, err := limiter.Allow(c.Request.Context(), "ip:"+c.ClientIP())
			if err == nil && !allowed {
				c.Header("Retry-After", strconv.Itoa(int(retryAfter/time.Second)+1))
				c.JSON(http.StatusTooManyRequests, ErrorResponse{Error: "rate limited"})
				return
			}
		}

		idemKey := strings.TrimSpace(c.GetHeader("Idempotency-Key"))
		var idemStorageKey string
		if idem != nil && idemKey != "" {
			idemStorageKey = redisrepo.KeyIdemTicket(eventID, idemKey)

			if payload, ok, _ := idem.GetResult(c.Request.Context(), idemStorageKey); ok {
				c.Header("Idempotency-Key", idemKey)
				c.Data(http.StatusCreated, "application/json; charset=utf-8", []byte(payload))
				return
			}

			locked, err := idem.AcquireLock(c.Request.Context(), idemStorageKey, 60*time.Second)
			if err != nil {
				respondErr(c, err)
				return
			}
			if !locked {
				if payload, ok, _ := idem.GetResult(c.Request.Context(), idemStorageKey); ok {
					c.Header("Idempotency-Key", idemKey)
					c.Data(http.StatusCreated, "application/json; charset=utf-8", []byte(payload))
					return
				}
				c.Header("Retry-After", "1")
				c.JSON(http.StatusConflict, ErrorResponse{Error: "idempotency key in progress"})
				return
			}
		}

		t, failures, err := svcs.Admission.RequestTicket(
			c.Request.Context(),
			eventID,
			req.Email,
			req.ReferralCode,
		)
		if err != nil {
			if idemStorageKey != "" && idem != nil {
				_ = idem.Release(c.Request.Context(), idemStorageKey)
			}
			// The ticket exists even though its confirmation email failed.
			if errors.Is(err, admission.ErrEmailDelivery) && t != nil {
				c.JSON(http.StatusBadGateway, ticketResponse(t, failures))
				return
			}
			respondErr(c, err)
			return
		}

		resp := ticketResponse(t, failures)

		if idemStorageKey != "" && idem != nil {
			b, _ := json.Marshal(resp)
			_ = idem.SaveResult(c.Request.Context(), idemStorageKey, string(b))
			c.Header("Idempotency-Key", idemKey)
		}

		c.JSON(http.StatusCreated, resp)
	}
}

// @Summary  Get own ticket for an event
// @Param    id  path  int  true  "Event ID"
// @Param    X-User-Email  header  string  true  "holder email"
// @Success  200 {object} TicketResponse
// @Failure  404 {object} ErrorResponse
// @Router   /events/{id}/tickets/me [get]
func handleGetMyTicket(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		email, ok := requireEmail(c)
		if !ok {
			return
		}
		t, err := svcs.Query.TicketFor(c.Request.Context(), eventID, email)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, ticketResponse(t, nil))
	}
}

// @Summary  Get ticket
// @Param    id  path  string  true  "Ticket ID (uuid)"
// @Param    X-User-Email  header  string  true  "holder email"
// @Success  200 {object} TicketResponse
// @Failure  404 {object} ErrorResponse
// @Router   /tickets/{id} [get]
func handleGetTicket(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		ticketID, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		email, ok := requireEmail(c)
		if !ok {
			return
		}
		t, err := svcs.Query.GetTicket(c.Request.Context(), ticketID)
		if err != nil {
			respondErr(c, err)
			return
		}
		// A foreign ticket looks like a missing one.
		if !strings.EqualFold(t.Email, email) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "ticket not found"})
			return
		}
		c.JSON(http.StatusOK, ticketResponse(t, nil))
	}
}

// @Summary  Cancel ticket
// @Param    id  path  string  true  "Ticket ID (uuid)"
// @Param    X-User-Email  header  string  true  "holder email"
// @Success  200 {object} map[string]any
// @Failure  404 {object} ErrorResponse
// @Failure  412 {object} ErrorResponse "an event is live"
// @Router   /tickets/{id} [delete]
func handleCancelTicket(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		ticketID, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		email, ok := requireEmail(c)
		if !ok {
			return
		}
		failures, err := svcs.Admission.CancelTicket(c.Request.Context(), ticketID, email)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"cancelled": true, "degraded": degradedNames(failures)})
	}
}

// @Summary  Join waitlist
// @Param    id  path  int  true  "Event ID"
// @Param    req body  JoinWaitlistRequest true "payload"
// @Success  201 {object} JoinWaitlistResponse
// @Failure  409 {object} ErrorResponse "already on list / has ticket"
// @Failure  412 {object} ErrorResponse "not sold out / closed"
// @Router   /events/{id}/waitlist [post]
func handleJoinWaitlist(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		var req JoinWaitlistRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		entry, total, failures, err := svcs.Waitlist.Join(
			c.Request.Context(),
			eventID,
			req.Email,
			req.ReferralCode,
		)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, JoinWaitlistResponse{
			Position: entry.Position,
			Rank:     total,
			Total:    total,
			Degraded: degradedNames(failures),
		})
	}
}

// @Summary  Leave waitlist
// @Param    id  path  int  true  "Event ID"
// @Param    X-User-Email  header  string  true  "email"
// @Success  204
// @Failure  404 {object} ErrorResponse
// @Router   /events/{id}/waitlist [delete]
func handleLeaveWaitlist(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		email, ok := requireEmail(c)
		if !ok {
			return
		}
		if err := svcs.Waitlist.Leave(c.Request.Context(), eventID, email); err != nil {
			respondErr(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// @Summary  Waitlist status
// @Param    id  path  int  true  "Event ID"
// @Param    X-User-Email  header  string  true  "email"
// @Success  200 {object} WaitlistStatusResponse
// @Router   /events/{id}/waitlist [get]
func handleWaitlistStatus(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		email, ok := requireEmail(c)
		if !ok {
			return
		}
		st, err := svcs.Waitlist.Status(c.Request.Context(), eventID, email)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, WaitlistStatusResponse{
			OnWaitlist: st.OnWaitlist,
			Rank:       st.Rank,
			Total:      st.Total,
		})
	}
}

// @Summary  Referral leaderboard
// @Param    event_id  query  int  false  "Event ID filter"
// @Success  200 {array} domain.ReferralRecord
// @Router   /referrals/leaderboard [get]
func handleLeaderboard(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID := int64(parseIntDefault(c.Query("event_id"), 0))
		recs, err := svcs.Referral.Leaderboard(c.Request.Context(), eventID)
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONCached(c, http.StatusOK, recs, 15)
	}
}

// @Summary  Scan a ticket at the door
// @Param    req body  ScanRequest true "ticket_id, or identity + event_id"
// @Success  200 {object} ScanResponse
// @Failure  404 {object} ErrorResponse "invalid ticket"
// @Failure  412 {object} ErrorResponse "no live event / wrong event"
// @Router   /scan [post]
func handleScan(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ScanRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		res, failures, err := svcs.Scan.Scan(c.Request.Context(), scan.Input{
			TicketID: req.TicketID,
			Identity: req.Identity,
			EventID:  req.EventID,
			Operator: req.Operator,
		})
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, scanResponse(res, failures))
	}
}

// @Summary  Create event
// @Param    req body  CreateEventRequest true "payload"
// @Success  201 {object} CreateEventResponse
// @Router   /admin/events [post]
func handleCreateEvent(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateEventRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		e, ok := eventFromRequest(c, 0, req)
		if !ok {
			return
		}
		id, err := svcs.Admin.CreateEvent(c.Request.Context(), e)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, CreateEventResponse{EventID: id})
	}
}

// @Summary  Update event
// @Param    id  path  int  true  "Event ID"
// @Param    req body  CreateEventRequest true "payload"
// @Success  200 {object} map[string]bool
// @Router   /admin/events/{id} [put]
func handleUpdateEvent(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		var req CreateEventRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		e, ok := eventFromRequest(c, eventID, req)
		if !ok {
			return
		}
		if err := svcs.Admin.UpdateEvent(c.Request.Context(), e); err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"updated": true})
	}
}

// @Summary  Set the event live
// @Param    id  path  int  true  "Event ID"
// @Success  200 {object} map[string]bool
// @Router   /admin/events/{id}/live [post]
func handleSetLive(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		if err := svcs.Admin.SetLive(c.Request.Context(), eventID); err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"live": true})
	}
}

// @Summary  Take the event off live
// @Param    id  path  int  true  "Event ID"
// @Success  200 {object} map[string]bool
// @Router   /admin/events/{id}/live [delete]
func handleClearLive(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		if err := svcs.Admin.ClearLive(c.Request.Context(), eventID); err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"live": false})
	}
}

// @Summary  Issue a ticket from the admin console
// @Param    id  path  int  true  "Event ID"
// @Param    req body  IssueAdminTicketRequest true "payload; type defaults to VIP"
// @Success  201 {object} TicketResponse
// @Router   /admin/events/{id}/tickets [post]
func handleAdminIssueTicket(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		var req IssueAdminTicketRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		t, failures, err := svcs.Admission.IssueAdminTicket(
			c.Request.Context(),
			eventID,
			req.Email,
			domain.TicketType(req.Type),
		)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, ticketResponse(t, failures))
	}
}

// @Summary  List waitlist entries
// @Param    id  path  int  true  "Event ID"
// @Success  200 {array} domain.WaitlistEntry
// @Router   /admin/events/{id}/waitlist [get]
func handleWaitlistEntries(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		entries, err := svcs.Waitlist.Entries(c.Request.Context(), eventID)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, entries)
	}
}

// @Summary  Reset a ticket to unscanned
// @Param    id  path  string  true  "Ticket ID (uuid)"
// @Success  200 {object} map[string]bool
// @Router   /admin/tickets/{id}/unscan [post]
func handleUnscan(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		ticketID, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}
		if err := svcs.Scan.Unscan(c.Request.Context(), ticketID); err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"unscanned": true})
	}
}

// @Summary  Recompute referral counts from source rows
// @Param    event_id  query  int  false  "Event ID filter"
// @Success  200 {object} RecomputeResponse
// @Router   /admin/referrals/recompute [post]
func handleRecompute(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID := int64(parseIntDefault(c.Query("event_id"), 0))
		n, err := svcs.Referral.Recompute(c.Request.Context(), eventID)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, RecomputeResponse{Records: n})
	}
}

// --- Helpers ---

func parseInt64Param(c *gin.Context, name string) (int64, bool) {
	s := c.Param(name)
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return v, true
}

func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	v, err := uuid.Parse(c.Param(name))
	if err != nil {
		badRequest(c, "invalid "+name)
		return uuid.Nil, false
	}
	return v, true
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

func requireEmail(c *gin.Context) (string, bool) {
	email := strings.TrimSpace(c.GetHeader("X-User-Email"))
	if email == "" {
		email = strings.TrimSpace(c.Query("email"))
	}
	if email == "" {
		badRequest(c, "missing X-User-Email")
		return "", false
	}
	return email, true
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

func eventFromRequest(c *gin.Context, id int64, req CreateEventRequest) (domain.Event, bool) {
	release, err := parseRFC3339(req.ReleaseAt)
	if err != nil {
		badRequest(c, "invalid release_at (RFC3339)")
		return domain.Event{}, false
	}
	starts, err := parseRFC3339(req.StartsAt)
	if err != nil {
		badRequest(c, "invalid starts_at (RFC3339)")
		return domain.Event{}, false
	}
	doors := starts
	if req.DoorsAt != "" {
		doors, err = parseRFC3339(req.DoorsAt)
		if err != nil {
			badRequest(c, "invalid doors_at (RFC3339)")
			return domain.Event{}, false
		}
	}

	return domain.Event{
		ID:        id,
		Title:     req.Title,
		Location:  req.Location,
		Capacity:  req.Capacity,
		ReleaseAt: release,
		StartsAt:  starts,
		DoorsAt:   doors,
		Mystery:   req.Mystery,
	}, true
}

func respondErr(c *gin.Context, err error) {
	if err == nil {
		c.Status(http.StatusNoContent)
		return
	}

	switch {
	// admission service
	case errors.Is(err, admission.ErrEventNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "event not found"})
		return
	case errors.Is(err, admission.ErrTicketNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "ticket not found"})
		return
	case errors.Is(err, admission.ErrSalesClosed):
		c.JSON(http.StatusPreconditionFailed, ErrorResponse{Error: "sales closed"})
		return
	case errors.Is(err, admission.ErrDuplicateTicket):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "already has a ticket"})
		return
	case errors.Is(err, admission.ErrSelfReferral):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "self referral"})
		return
	case errors.Is(err, admission.ErrInvalidReferral):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "unknown referral code"})
		return
	case errors.Is(err, admission.ErrCapacityExceeded):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "event sold out"})
		return
	case errors.Is(err, admission.ErrEventLive):
		c.JSON(http.StatusPreconditionFailed, ErrorResponse{Error: "an event is live"})
		return
	// waitlist service
	case errors.Is(err, waitlist.ErrEventNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "event not found"})
		return
	case errors.Is(err, waitlist.ErrWaitlistClosed):
		c.JSON(http.StatusPreconditionFailed, ErrorResponse{Error: "waitlist closed"})
		return
	case errors.Is(err, waitlist.ErrNotSoldOut):
		c.JSON(http.StatusPreconditionFailed, ErrorResponse{Error: "event not sold out"})
		return
	case errors.Is(err, waitlist.ErrAlreadyHasTicket):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "already has a ticket"})
		return
	case errors.Is(err, waitlist.ErrAlreadyOnWaitlist):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "already on waitlist"})
		return
	case errors.Is(err, waitlist.ErrNotOnWaitlist):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "not on waitlist"})
		return
	// scan service
	case errors.Is(err, scan.ErrNoLiveEvent):
		c.JSON(http.StatusPreconditionFailed, ErrorResponse{Error: "no live event"})
		return
	case errors.Is(err, scan.ErrWrongEvent):
		c.JSON(http.StatusPreconditionFailed, ErrorResponse{Error: "ticket is for another event"})
		return
	case errors.Is(err, scan.ErrInvalidTicket):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "invalid ticket"})
		return
	case errors.Is(err, scan.ErrBadIdentifier):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "ticket_id or identity required"})
		return
	// query service
	case errors.Is(err, query.ErrEventNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "event not found"})
		return
	case errors.Is(err, query.ErrTicketNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "ticket not found"})
		return
	case errors.Is(err, query.ErrNoLiveEvent):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "no live event"})
		return
	// admin service
	case errors.Is(err, admin.ErrEventNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "event not found"})
		return
	case errors.Is(err, admin.ErrEventConflict):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "event conflict"})
		return
	case errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "storage unavailable"})
		return
	}

	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}
