package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nickjlamb/biomarkerfinder/internal/domain"
)

// errorBody is the uniform error response shape.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// respondError maps domain errors onto HTTP statuses: validation failures are
// 400, unresolvable terms 404, anything else is an unhandled upstream
// failure and responds 500.
func (s *Server) respondError(c *gin.Context, summary string, err error) {
	switch {
	case domain.IsValidation(err):
		c.JSON(http.StatusBadRequest, errorBody{Error: summary, Message: err.Error()})
	case domain.IsTermNotFound(err):
		c.JSON(http.StatusNotFound, errorBody{Error: summary, Message: err.Error()})
	default:
		s.logger.WithField("error", err.Error()).Error(summary)
		c.JSON(http.StatusInternalServerError, errorBody{Error: summary, Message: err.Error()})
	}
}

// handleGetBiomarkers returns ranked biomarkers for a disease, with matched
// known drugs. The disease field accepts an EFO id or a free-text name.
func (s *Server) handleGetBiomarkers(c *gin.Context) {
	var req domain.AssociatedTargetsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody{Error: "Invalid request body", Message: err.Error()})
		return
	}
	if req.Disease == "" {
		s.respondError(c, "Query failed", domain.NewValidationError("disease", "missing 'disease' (EFO id or name) in body"))
		return
	}

	report, err := s.biomarkers.GetBiomarkers(c.Request.Context(), req)
	if err != nil {
		s.respondError(c, "Query failed", err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// knownDrugsRequest is the body of POST /knownDrugs.
type knownDrugsRequest struct {
	EFOID         string `json:"efoId"`
	Cursor        string `json:"cursor"`
	FreeTextQuery string `json:"freeTextQuery"`
	Size          int    `json:"size"`
}

// handleKnownDrugs returns one cursor page of known-drug rows for a disease.
func (s *Server) handleKnownDrugs(c *gin.Context) {
	var req knownDrugsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody{Error: "Invalid request body", Message: err.Error()})
		return
	}
	if req.EFOID == "" {
		s.respondError(c, "KnownDrugs query failed", domain.NewValidationError("efoId", "missing efoId"))
		return
	}

	page, err := s.platform.KnownDrugs(c.Request.Context(), req.EFOID, req.Cursor, req.FreeTextQuery, req.Size)
	if err != nil {
		s.respondError(c, "KnownDrugs query failed", err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// siblingsRequest is the body of POST /siblings.
type siblingsRequest struct {
	EFOID string `json:"efoId"`
}

// handleSiblings returns the parent, sibling, and child terms of an EFO term.
func (s *Server) handleSiblings(c *gin.Context) {
	var req siblingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody{Error: "Invalid request body", Message: err.Error()})
		return
	}
	if req.EFOID == "" {
		s.respondError(c, "siblings lookup failed", domain.NewValidationError("efoId", "missing efoId"))
		return
	}

	set, err := s.resolver.Resolve(c.Request.Context(), domain.CanonicalID(req.EFOID))
	if err != nil {
		s.respondError(c, "siblings lookup failed", err)
		return
	}

	c.JSON(http.StatusOK, set)
}

// actionabilityRequest is the body of POST /actionability.
type actionabilityRequest struct {
	EFOID    string `json:"efoId"`
	TargetID string `json:"targetId"`
	Size     int    `json:"size"`
}

// handleActionability reports whether the target is already drug-associated
// in a disease related to the given term.
func (s *Server) handleActionability(c *gin.Context) {
	var req actionabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody{Error: "Invalid request body", Message: err.Error()})
		return
	}
	if req.EFOID == "" || req.TargetID == "" {
		s.respondError(c, "actionability check failed", domain.NewValidationError("efoId/targetId", "missing efoId or targetId"))
		return
	}

	result, err := s.crossref.CheckActionability(c.Request.Context(), req.EFOID, req.TargetID, req.Size)
	if err != nil {
		s.respondError(c, "actionability check failed", err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// drugWarningRequest is the body of POST /drugWarning.
type drugWarningRequest struct {
	ChemblID string `json:"chemblId"`
}

// handleDrugWarning returns the approval/withdrawal/warning record for a
// ChEMBL drug id.
func (s *Server) handleDrugWarning(c *gin.Context) {
	var req drugWarningRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody{Error: "Invalid request body", Message: err.Error()})
		return
	}
	if req.ChemblID == "" {
		s.respondError(c, "drugWarning query failed", domain.NewValidationError("chemblId", "missing chemblId"))
		return
	}

	record, err := s.platform.DrugWarnings(c.Request.Context(), req.ChemblID)
	if err != nil {
		s.respondError(c, "drugWarning query failed", err)
		return
	}

	c.JSON(http.StatusOK, record)
}
