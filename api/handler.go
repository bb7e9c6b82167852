package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dmms090191-rgb/duerp-sub001/catalog"
	"github.com/dmms090191-rgb/duerp-sub001/models"
	"github.com/dmms090191-rgb/duerp-sub001/repository"
	"github.com/dmms090191-rgb/duerp-sub001/services"
	"github.com/dmms090191-rgb/duerp-sub001/utils"
)

// APIHandler holds all dependencies for the API handlers.
type APIHandler struct {
	registry *catalog.Registry
	sessions *services.SessionManager
}

// NewAPIHandler creates a new APIHandler with necessary dependencies.
func NewAPIHandler(registry *catalog.Registry, sessions *services.SessionManager) *APIHandler {
	return &APIHandler{
		registry: registry,
		sessions: sessions,
	}
}

// session resolves the (clientID, sectorID) scope from the query string and
// returns the already-opened session. A missing session is a client error:
// the front-end must open a session before issuing scoped requests.
func (h *APIHandler) session(c *gin.Context) (*services.Session, bool) {
	clientID := c.Query("clientID")
	sectorID := c.Query("sectorID")
	if clientID == "" {
		utils.SendJSONError(c, http.StatusBadRequest, "clientID query parameter is required", nil)
		return nil, false
	}
	session, ok := h.sessions.Get(clientID, sectorID)
	if !ok {
		utils.SendJSONError(c, http.StatusNotFound, "no open session for this client and sector; call POST /api/session first", nil)
		return nil, false
	}
	return session, true
}

// sendMutationError maps service-layer errors onto HTTP statuses.
func sendMutationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrUnknownQuestion),
		errors.Is(err, services.ErrUnknownCategory),
		errors.Is(err, services.ErrActionNotFound):
		utils.SendJSONError(c, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, services.ErrUnknownMeasure),
		errors.Is(err, services.ErrNotGateQuestion),
		errors.Is(err, services.ErrGateQuestion),
		errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrInvalidPriority),
		errors.Is(err, services.ErrEmptyDescription):
		utils.SendJSONError(c, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, repository.ErrScopeClosed):
		utils.SendJSONError(c, http.StatusConflict, "this assessment session has been closed", err)
	default:
		utils.SendJSONError(c, http.StatusInternalServerError, "", err)
	}
}

// mutationResult is the common payload after a successful response mutation:
// the new response, the (possibly auto-advanced) cursor, and a warning when
// the last asynchronous save failed. A failed save never reverts the edit;
// the warning lets the front-end offer a retry.
func mutationResult(c *gin.Context, session *services.Session, resp models.Response) {
	payload := gin.H{
		"response":  resp,
		"navigator": session.State(),
	}
	if err := session.PersistWarning(); err != nil {
		payload["persistWarning"] = "your latest changes could not be saved yet; they are kept in this session and saving will be retried"
	}
	c.JSON(http.StatusOK, payload)
}

// SectorsHandler lists the known sector catalogs.
func (h *APIHandler) SectorsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"sectors": h.registry.Sectors()})
}

// OpenSessionHandler opens (or resumes) the assessment scope for a client and
// sector, hydrating previously stored responses.
func (h *APIHandler) OpenSessionHandler(c *gin.Context) {
	var req struct {
		ClientID string `json:"clientID" binding:"required"`
		SectorID string `json:"sectorID"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendJSONError(c, http.StatusBadRequest, "clientID is required", err)
		return
	}
	session, err := h.sessions.Open(req.ClientID, req.SectorID)
	if err != nil {
		utils.SendJSONError(c, http.StatusInternalServerError, "failed to open assessment session", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"clientID":    session.ClientID,
		"sectorID":    session.SectorID,
		"sectorLabel": session.Catalog.SectorLabel,
		"categories":  len(session.Catalog.Categories),
		"questions":   session.Catalog.TotalQuestions(),
		"navigator":   session.State(),
		"progress":    session.Progress(),
	})
}

// CloseSessionHandler tears the scope down (e.g. on sector switch).
func (h *APIHandler) CloseSessionHandler(c *gin.Context) {
	clientID := c.Query("clientID")
	if clientID == "" {
		utils.SendJSONError(c, http.StatusBadRequest, "clientID query parameter is required", nil)
		return
	}
	h.sessions.Close(clientID, c.Query("sectorID"))
	c.JSON(http.StatusOK, gin.H{"closed": true})
}

// StateHandler returns the navigator cursor plus the active category and
// question payloads the front-end renders.
func (h *APIHandler) StateHandler(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	state := session.State()
	category := session.Catalog.Categories[state.ActiveCategoryIndex]

	payload := gin.H{
		"navigator": state,
		"category":  category,
		"progress":  session.Progress(),
	}
	if state.ViewMode == services.ViewQuestion && len(category.Questions) > 0 {
		question := category.Questions[state.ActiveQuestionIndex]
		resp, _ := session.Response(question.ID)
		payload["question"] = question
		payload["response"] = resp
	}
	c.JSON(http.StatusOK, payload)
}

// GoNextHandler advances the cursor. moved=false signals the terminal state:
// the questionnaire has no next category and the caller owns what follows.
func (h *APIHandler) GoNextHandler(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	state, moved := session.GoNext()
	c.JSON(http.StatusOK, gin.H{"navigator": state, "moved": moved})
}

// GoPrevHandler retreats the cursor.
func (h *APIHandler) GoPrevHandler(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	state, moved := session.GoPrev()
	c.JSON(http.StatusOK, gin.H{"navigator": state, "moved": moved})
}

// SelectCategoryHandler jumps to a category by index. Unreachable or
// out-of-range targets report moved=false instead of failing: gating may have
// flipped since the front-end rendered its navigation.
func (h *APIHandler) SelectCategoryHandler(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	var req struct {
		Index int `json:"index"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendJSONError(c, http.StatusBadRequest, "index is required", err)
		return
	}
	state, moved := session.SelectCategory(req.Index)
	c.JSON(http.StatusOK, gin.H{"navigator": state, "moved": moved})
}

// SelectQuestionHandler jumps to a question within the active category.
func (h *APIHandler) SelectQuestionHandler(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	var req struct {
		Index int `json:"index"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendJSONError(c, http.StatusBadRequest, "index is required", err)
		return
	}
	state, moved := session.SelectQuestion(req.Index)
	c.JSON(http.StatusOK, gin.H{"navigator": state, "moved": moved})
}

// AnswerGateHandler records the yes/no answer of a gate question.
func (h *APIHandler) AnswerGateHandler(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	var req struct {
		Affirmed *bool `json:"affirmed" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendJSONError(c, http.StatusBadRequest, "affirmed (true/false) is required", err)
		return
	}
	resp, err := session.AnswerGate(c.Param("questionID"), *req.Affirmed)
	if err != nil {
		sendMutationError(c, err)
		return
	}
	mutationResult(c, session, resp)
}

// SetRiskStatusHandler records the risk classification of a standard question.
func (h *APIHandler) SetRiskStatusHandler(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	var req struct {
		RiskStatus models.RiskStatus `json:"riskStatus"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendJSONError(c, http.StatusBadRequest, "riskStatus is required", err)
		return
	}
	resp, err := session.SetRiskStatus(c.Param("questionID"), req.RiskStatus)
	if err != nil {
		sendMutationError(c, err)
		return
	}
	mutationResult(c, session, resp)
}

// SetRiskPriorityHandler records the remediation priority.
func (h *APIHandler) SetRiskPriorityHandler(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	var req struct {
		RiskPriority models.RiskPriority `json:"riskPriority"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendJSONError(c, http.StatusBadRequest, "riskPriority is required", err)
		return
	}
	resp, err := session.SetRiskPriority(c.Param("questionID"), req.RiskPriority)
	if err != nil {
		sendMutationError(c, err)
		return
	}
	mutationResult(c, session, resp)
}

// ToggleMeasureHandler flips the selection of a catalog measure.
func (h *APIHandler) ToggleMeasureHandler(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	var req struct {
		MeasureID string `json:"measureID" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendJSONError(c, http.StatusBadRequest, "measureID is required", err)
		return
	}
	resp, err := session.ToggleMeasure(c.Param("questionID"), req.MeasureID)
	if err != nil {
		sendMutationError(c, err)
		return
	}
	mutationResult(c, session, resp)
}

// AddCustomMeasureHandler records a free-text measure of the client's own.
func (h *APIHandler) AddCustomMeasureHandler(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	var req struct {
		Description string `json:"description" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendJSONError(c, http.StatusBadRequest, "description is required", err)
		return
	}
	resp, err := session.AddCustomMeasure(c.Param("questionID"), req.Description)
	if err != nil {
		sendMutationError(c, err)
		return
	}
	mutationResult(c, session, resp)
}

// RemoveCustomMeasureHandler deletes a custom measure.
func (h *APIHandler) RemoveCustomMeasureHandler(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	resp, err := session.RemoveCustomMeasure(c.Param("questionID"), c.Param("measureID"))
	if err != nil {
		sendMutationError(c, err)
		return
	}
	mutationResult(c, session, resp)
}

// actionItemRequest is the wire form of an action item; dates travel as
// YYYY-MM-DD strings.
type actionItemRequest struct {
	Description string `json:"description" binding:"required"`
	Responsible string `json:"responsible"`
	Budget      string `json:"budget"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
}

func (r *actionItemRequest) toModel() (models.ActionItem, error) {
	start, err := utils.ParseDate(r.StartDate)
	if err != nil {
		return models.ActionItem{}, err
	}
	end, err := utils.ParseDate(r.EndDate)
	if err != nil {
		return models.ActionItem{}, err
	}
	return models.ActionItem{
		Description: r.Description,
		Responsible: r.Responsible,
		Budget:      r.Budget,
		StartDate:   start,
		EndDate:     end,
	}, nil
}

// AddActionItemHandler appends a remediation action to a question's plan.
func (h *APIHandler) AddActionItemHandler(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	var req actionItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendJSONError(c, http.StatusBadRequest, "description is required", err)
		return
	}
	item, err := req.toModel()
	if err != nil {
		utils.SendJSONError(c, http.StatusBadRequest, "dates must use the YYYY-MM-DD format", err)
		return
	}
	resp, err := session.AddActionItem(c.Param("questionID"), item)
	if err != nil {
		sendMutationError(c, err)
		return
	}
	mutationResult(c, session, resp)
}

// UpdateActionItemHandler replaces an existing action item.
func (h *APIHandler) UpdateActionItemHandler(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	var req actionItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendJSONError(c, http.StatusBadRequest, "description is required", err)
		return
	}
	item, err := req.toModel()
	if err != nil {
		utils.SendJSONError(c, http.StatusBadRequest, "dates must use the YYYY-MM-DD format", err)
		return
	}
	item.ID = c.Param("itemID")
	resp, err := session.UpdateActionItem(c.Param("questionID"), item)
	if err != nil {
		sendMutationError(c, err)
		return
	}
	mutationResult(c, session, resp)
}

// RemoveActionItemHandler deletes an action item from a question's plan.
func (h *APIHandler) RemoveActionItemHandler(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	resp, err := session.RemoveActionItem(c.Param("questionID"), c.Param("itemID"))
	if err != nil {
		sendMutationError(c, err)
		return
	}
	mutationResult(c, session, resp)
}

// SetRemarksHandler stores a question's free-text remarks.
func (h *APIHandler) SetRemarksHandler(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	var req struct {
		Remarks string `json:"remarks"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendJSONError(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	resp, err := session.SetRemarks(c.Param("questionID"), req.Remarks)
	if err != nil {
		sendMutationError(c, err)
		return
	}
	mutationResult(c, session, resp)
}

// ResetCategoryHandler removes every response of one category.
func (h *APIHandler) ResetCategoryHandler(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	if err := session.ResetCategory(c.Param("categoryID")); err != nil {
		sendMutationError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"navigator": session.State(), "progress": session.Progress()})
}

// ResetAllHandler clears the whole scope.
func (h *APIHandler) ResetAllHandler(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	if err := session.ResetAll(); err != nil {
		sendMutationError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"navigator": session.State(), "progress": session.Progress()})
}

// ProgressHandler returns the sector-wide summary statistics.
func (h *APIHandler) ProgressHandler(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, session.Progress())
}

// ReportHandler compiles and returns the report document. The rendering
// collaborator (PDF/HTML) consumes this JSON; no rendering happens here.
func (h *APIHandler) ReportHandler(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, session.Report(c.Query("generalRemarks")))
}
