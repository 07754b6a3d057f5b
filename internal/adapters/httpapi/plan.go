package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"

	"github.com/Guilhem-Bonnet/streamplan/internal/app"
	"github.com/Guilhem-Bonnet/streamplan/internal/domain"
	"github.com/Guilhem-Bonnet/streamplan/internal/httpjson"
	"github.com/Guilhem-Bonnet/streamplan/internal/solver"
)

const maxPlanBody = 1 << 20

type PlanHandler struct {
	planner *app.PlannerService
}

func NewPlanHandler(planner *app.PlannerService) *PlanHandler {
	return &PlanHandler{planner: planner}
}

func (h *PlanHandler) Routes(r chi.Router) {
	r.Get("/plan", h.get)
	r.Post("/plan", h.post)
}

// get accepte la forme query historique:
// ?games=[1,2]&teams=["A"]&tournaments=[]&live=1&highlights=0&only_monthly_billing=0&all_games=0
func (h *PlanHandler) get(w http.ResponseWriter, r *http.Request) {
	req, err := parsePlanQuery(r.URL.Query())
	if err != nil {
		httpjson.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.plan(w, r, req)
}

type planBody struct {
	Items              []uint   `json:"items"`
	Games              []uint   `json:"games"`
	Teams              []string `json:"teams"`
	Tournaments        []string `json:"tournaments"`
	Live               bool     `json:"live"`
	Highlights         bool     `json:"highlights"`
	OnlyMonthlyBilling bool     `json:"only_monthly_billing"`
	AllItems           bool     `json:"all_items"`
	AllGames           bool     `json:"all_games"`
}

func (h *PlanHandler) post(w http.ResponseWriter, r *http.Request) {
	var body planBody
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxPlanBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		httpjson.WriteError(w, http.StatusBadRequest, "invalid json")
		return
	}
	h.plan(w, r, domain.PlanRequest{
		Items:              append(body.Items, body.Games...),
		Teams:              body.Teams,
		Tournaments:        body.Tournaments,
		Live:               body.Live,
		Highlights:         body.Highlights,
		OnlyMonthlyBilling: body.OnlyMonthlyBilling,
		AllItems:           body.AllItems || body.AllGames,
	})
}

func (h *PlanHandler) plan(w http.ResponseWriter, r *http.Request, req domain.PlanRequest) {
	resp, err := h.planner.Plan(r.Context(), req)
	if err != nil {
		writePlanError(w, r, err)
		return
	}
	httpjson.Write(w, http.StatusOK, resp)
}

func writePlanError(w http.ResponseWriter, r *http.Request, err error) {
	var coded *app.CodedError
	switch {
	case errors.Is(err, solver.ErrInvalidRequest):
		httpjson.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, app.ErrNotFound):
		httpjson.WriteError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &coded) && coded.Code == app.CodeInfeasible:
		httpjson.WriteCodedError(w, http.StatusUnprocessableEntity, coded.Code, coded.Message)
	case errors.As(err, &coded) && coded.Code == app.CodeBudgetExceeded:
		httpjson.WriteCodedError(w, http.StatusServiceUnavailable, coded.Code, coded.Message)
	default:
		hlog.FromRequest(r).Error().Err(err).Msg("plan")
		httpjson.WriteError(w, http.StatusInternalServerError, "internal error")
	}
}

// parsePlanQuery: listes absentes = vides, drapeaux absents = faux.
func parsePlanQuery(q url.Values) (domain.PlanRequest, error) {
	var req domain.PlanRequest

	for _, name := range []string{"games", "items"} {
		var ids []uint
		if err := jsonParam(q, name, &ids); err != nil {
			return req, err
		}
		req.Items = append(req.Items, ids...)
	}
	if err := jsonParam(q, "teams", &req.Teams); err != nil {
		return req, err
	}
	if err := jsonParam(q, "tournaments", &req.Tournaments); err != nil {
		return req, err
	}

	flags := []struct {
		names []string
		dest  *bool
	}{
		{[]string{"live"}, &req.Live},
		{[]string{"highlights"}, &req.Highlights},
		{[]string{"only_monthly_billing"}, &req.OnlyMonthlyBilling},
		{[]string{"all_games", "all_items"}, &req.AllItems},
	}
	for _, f := range flags {
		for _, name := range f.names {
			v, err := flagParam(q, name)
			if err != nil {
				return req, err
			}
			*f.dest = *f.dest || v
		}
	}
	return req, nil
}

func jsonParam(q url.Values, name string, dest any) error {
	raw := q.Get(name)
	if raw == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return fmt.Errorf("invalid '%s': expected a JSON array", name)
	}
	return nil
}

func flagParam(q url.Values, name string) (bool, error) {
	switch q.Get(name) {
	case "", "0", "false":
		return false, nil
	case "1", "true":
		return true, nil
	default:
		return false, fmt.Errorf("invalid '%s': expected 1, 0, true or false", name)
	}
}
