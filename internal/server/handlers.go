package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/jonathan/academy-desk/internal/classify"
	"github.com/jonathan/academy-desk/internal/db"
	"github.com/jonathan/academy-desk/internal/normalize"
	"github.com/jonathan/academy-desk/internal/types"
)

// maxBodyBytes bounds request bodies; pasted intake notes are small.
const maxBodyBytes = 1 << 20

// ---------------------------------------------------------------------
// Request / response types
// ---------------------------------------------------------------------

// ExtractRequest carries pasted intake text.
type ExtractRequest struct {
	Text string `json:"text" validate:"required"`
}

// ExtractResponse is the extracted record, the form view of it and how the
// withdrawal reason was chosen.
type ExtractResponse struct {
	Record         types.PartialRecord `json:"record"`
	Form           map[string]string   `json:"form"`
	Classification classify.Result     `json:"classification"`
}

// BatchExtractRequest carries many pasted notes.
type BatchExtractRequest struct {
	Texts []string `json:"texts" validate:"required,min=1,max=500"`
}

// BatchExtractResponse holds one record per input text, in input order.
type BatchExtractResponse struct {
	Records []types.PartialRecord `json:"records"`
}

// NormalizeRequest asks for one value to be normalized. Kind defaults to
// qualitative.
type NormalizeRequest struct {
	Value any    `json:"value"`
	Kind  string `json:"kind" validate:"omitempty,oneof=qualitative rating date phone months yesno"`
}

// NormalizeResponse is a normalized value. Percent is only set for ratings.
type NormalizeResponse struct {
	Numeric float64  `json:"numeric"`
	Display string   `json:"display"`
	Percent *float64 `json:"percent,omitempty"`
}

// QuickCopyRequest carries a record to render as label lines.
type QuickCopyRequest struct {
	Record types.PartialRecord `json:"record" validate:"required"`
}

// DraftListResponse is one page of drafts.
type DraftListResponse struct {
	Drafts []db.Draft `json:"drafts"`
	Total  int        `json:"total"`
	Limit  int        `json:"limit"`
	Offset int        `json:"offset"`
}

// ReasonAnalyticsResponse counts drafts per withdrawal reason.
type ReasonAnalyticsResponse struct {
	Total   int              `json:"total"`
	Reasons []db.ReasonCount `json:"reasons"`
}

// decodeRequest reads a JSON body into dst and validates its tags.
func (s *Server) decodeRequest(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return &ErrValidation{Message: "request body is empty"}
		}
		return &ErrValidation{Message: "invalid JSON body"}
	}

	if err := s.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return &ErrValidation{Field: jsonFieldName(verrs[0]), Message: "failed '" + verrs[0].Tag() + "' validation"}
		}
		return &ErrValidation{Message: err.Error()}
	}
	return nil
}

// jsonFieldName maps a validator error back to the request's JSON key.
func jsonFieldName(fe validator.FieldError) string {
	switch fe.Field() {
	case "Text":
		return "text"
	case "Texts":
		return "texts"
	case "Kind":
		return "kind"
	case "Record":
		return "record"
	default:
		return fe.Field()
	}
}

// ---------------------------------------------------------------------
// Extraction Handlers
// ---------------------------------------------------------------------

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	var req ExtractRequest
	if err := s.decodeRequest(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	rec, res := s.assembler.Explain(req.Text)
	s.jsonResponse(w, http.StatusOK, ExtractResponse{
		Record:         rec,
		Form:           rec.FormState(s.assembler.Rules.Fields()),
		Classification: res,
	})
}

func (s *Server) handleExtractBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchExtractRequest
	if err := s.decodeRequest(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	records, err := s.assembler.ExtractAll(r.Context(), req.Texts, s.workers)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, BatchExtractResponse{Records: records})
}

func (s *Server) handleNormalize(w http.ResponseWriter, r *http.Request) {
	var req NormalizeRequest
	if err := s.decodeRequest(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	kind := req.Kind
	if kind == "" {
		kind = "qualitative"
	}

	var v normalize.Value
	if kind == "qualitative" || kind == "rating" {
		v = normalize.Qualitative(req.Value)
		pct := normalize.BarPercent(v)
		s.jsonResponse(w, http.StatusOK, NormalizeResponse{Numeric: v.Numeric, Display: v.Display, Percent: &pct})
		return
	}

	fn, _ := normalize.ByName(kind)
	v = fn(types.FormatValue(req.Value))
	s.jsonResponse(w, http.StatusOK, NormalizeResponse{Numeric: v.Numeric, Display: v.Display})
}

func (s *Server) handleQuickCopy(w http.ResponseWriter, r *http.Request) {
	var req QuickCopyRequest
	if err := s.decodeRequest(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]string{"text": s.assembler.QuickCopy(req.Record)})
}

// ---------------------------------------------------------------------
// Draft Handlers
// ---------------------------------------------------------------------

func (s *Server) handleCreateDraft(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, r, ErrStoreUnavailable)
		return
	}

	var req ExtractRequest
	if err := s.decodeRequest(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	rec := s.assembler.ExtractRecord(req.Text)
	draft, err := s.store.SaveDraft(r.Context(), db.NewDraftInput(req.Text, rec))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, draft)
}

func (s *Server) handleListDrafts(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, r, ErrStoreUnavailable)
		return
	}

	limit, err := queryInt(r, "limit", db.DefaultListLimit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	limit, offset = db.NormalizePage(limit, offset)

	drafts, err := s.store.ListDrafts(r.Context(), limit, offset)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	total, err := s.store.CountDrafts(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, DraftListResponse{
		Drafts: drafts,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}

func (s *Server) handleGetDraft(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, r, ErrStoreUnavailable)
		return
	}

	id, err := pathUUID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	draft, err := s.store.GetDraft(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if draft == nil {
		s.writeError(w, r, &ErrDraftNotFound{ID: id})
		return
	}
	s.jsonResponse(w, http.StatusOK, draft)
}

func (s *Server) handleDeleteDraft(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, r, ErrStoreUnavailable)
		return
	}

	id, err := pathUUID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	deleted, err := s.store.DeleteDraft(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !deleted {
		s.writeError(w, r, &ErrDraftNotFound{ID: id})
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ---------------------------------------------------------------------
// Analytics Handlers
// ---------------------------------------------------------------------

func (s *Server) handleReasonAnalytics(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, r, ErrStoreUnavailable)
		return
	}

	counts, err := s.store.ReasonCounts(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	total := 0
	for _, c := range counts {
		total += c.Count
	}
	s.jsonResponse(w, http.StatusOK, ReasonAnalyticsResponse{Total: total, Reasons: counts})
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		return uuid.Nil, &ErrValidation{Field: name, Message: "invalid draft ID"}
	}
	return id, nil
}

func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, &ErrValidation{Field: name, Message: "must be a non-negative integer"}
	}
	return n, nil
}
