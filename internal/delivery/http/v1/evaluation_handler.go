package v1

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rilesCL/Projet-Leandrose-sub000/internal/delivery/http/middleware"
	"github.com/rilesCL/Projet-Leandrose-sub000/internal/delivery/http/response"
	"github.com/rilesCL/Projet-Leandrose-sub000/internal/domain"
)

type EvaluationHandler struct {
	evaluationUC domain.EvaluationUsecase
}

// NewEvaluationHandler registers evaluation routes
func NewEvaluationHandler(r *gin.RouterGroup, mutations gin.HandlerFunc, evaluationUC domain.EvaluationUsecase) {
	handler := &EvaluationHandler{evaluationUC: evaluationUC}

	employers := r.Group("/employers", middleware.RequireRole(domain.RoleEmployer))
	{
		employers.POST("/evaluations", mutations, handler.CreateByEmployer)
		employers.POST("/evaluations/:id/submit", mutations, handler.SubmitByEmployer)
		employers.GET("/evaluations/eligible", handler.Eligible)
	}

	instructors := r.Group("/instructors", middleware.RequireRole(domain.RoleInstructor))
	{
		instructors.POST("/evaluations", mutations, handler.CreateByInstructor)
		instructors.POST("/evaluations/:id/submit", mutations, handler.SubmitByInstructor)
		instructors.GET("/evaluations/eligible", handler.Eligible)
	}

	r.GET("/evaluations/eligibility", handler.IsEligible)
	r.GET("/evaluations/:id/document/:side", handler.Document)
}

// CreateEvaluationRequest identifies the placement to evaluate
type CreateEvaluationRequest struct {
	StudentID int64 `json:"student_id" binding:"required,gt=0"`
	OfferID   int64 `json:"offer_id" binding:"required,gt=0"`
}

// SubmitEvaluationRequest is a filled questionnaire plus the document language
type SubmitEvaluationRequest struct {
	domain.EvaluationForm
	Locale string `json:"locale"`
}

// CreateByEmployer godoc
// @Summary      Open an evaluation as the employer
// @Description  Returns the existing evaluation for the placement when there is one
// @Tags         evaluations
// @Accept       json
// @Produce      json
// @Param        body  body      CreateEvaluationRequest  true  "Placement"
// @Success      201   {object}  response.Response{data=domain.Evaluation}
// @Failure      403   {object}  response.Response
// @Failure      404   {object}  response.Response
// @Failure      422   {object}  response.Response
// @Router       /employers/evaluations [post]
// @Security     BearerAuth
func (h *EvaluationHandler) CreateByEmployer(c *gin.Context) {
	h.create(c, h.evaluationUC.CreateByEmployer)
}

// CreateByInstructor godoc
// @Summary      Open an evaluation as the supervising instructor
// @Description  Returns the existing evaluation for the placement when there is one
// @Tags         evaluations
// @Accept       json
// @Produce      json
// @Param        body  body      CreateEvaluationRequest  true  "Placement"
// @Success      201   {object}  response.Response{data=domain.Evaluation}
// @Failure      403   {object}  response.Response
// @Failure      404   {object}  response.Response
// @Failure      422   {object}  response.Response
// @Router       /instructors/evaluations [post]
// @Security     BearerAuth
func (h *EvaluationHandler) CreateByInstructor(c *gin.Context) {
	h.create(c, h.evaluationUC.CreateByInstructor)
}

type opening func(ctx context.Context, actorID, studentID, offerID int64) (*domain.Evaluation, error)

func (h *EvaluationHandler) create(c *gin.Context, fn opening) {
	var req CreateEvaluationRequest
	if err := bindJSON(c, &req); err != nil {
		c.Error(err)
		return
	}

	ev, err := fn(c.Request.Context(), actorFrom(c).ID, req.StudentID, req.OfferID)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusCreated, "Evaluation ready", ev)
}

// SubmitByEmployer godoc
// @Summary      Submit the employer evaluation
// @Tags         evaluations
// @Accept       json
// @Produce      json
// @Param        id    path      int                      true  "Evaluation ID"
// @Param        body  body      SubmitEvaluationRequest  true  "Filled form"
// @Success      200   {object}  response.Response{data=domain.Evaluation}
// @Failure      400   {object}  response.Response
// @Failure      403   {object}  response.Response
// @Failure      422   {object}  response.Response
// @Router       /employers/evaluations/{id}/submit [post]
// @Security     BearerAuth
func (h *EvaluationHandler) SubmitByEmployer(c *gin.Context) {
	h.submit(c, h.evaluationUC.SubmitByEmployer)
}

// SubmitByInstructor godoc
// @Summary      Submit the instructor evaluation
// @Tags         evaluations
// @Accept       json
// @Produce      json
// @Param        id    path      int                      true  "Evaluation ID"
// @Param        body  body      SubmitEvaluationRequest  true  "Filled form"
// @Success      200   {object}  response.Response{data=domain.Evaluation}
// @Failure      400   {object}  response.Response
// @Failure      403   {object}  response.Response
// @Failure      422   {object}  response.Response
// @Router       /instructors/evaluations/{id}/submit [post]
// @Security     BearerAuth
func (h *EvaluationHandler) SubmitByInstructor(c *gin.Context) {
	h.submit(c, h.evaluationUC.SubmitByInstructor)
}

type submission func(ctx context.Context, actorID, evaluationID int64, form domain.EvaluationForm, locale string) (*domain.Evaluation, error)

func (h *EvaluationHandler) submit(c *gin.Context, fn submission) {
	id, err := pathID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	var req SubmitEvaluationRequest
	if err := bindJSON(c, &req); err != nil {
		c.Error(err)
		return
	}

	ev, err := fn(c.Request.Context(), actorFrom(c).ID, id, req.EvaluationForm, req.Locale)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Evaluation submitted", ev)
}

// Eligible godoc
// @Summary      List placements I can evaluate
// @Description  Validated agreements of the caller, annotated with evaluation progress
// @Tags         evaluations
// @Produce      json
// @Success      200  {object}  response.Response{data=[]domain.EligibleEvaluation}
// @Router       /employers/evaluations/eligible [get]
// @Router       /instructors/evaluations/eligible [get]
// @Security     BearerAuth
func (h *EvaluationHandler) Eligible(c *gin.Context) {
	list, err := h.evaluationUC.GetEligibleEvaluations(c.Request.Context(), actorFrom(c))
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Eligible evaluations retrieved", list)
}

// IsEligible godoc
// @Summary      Check evaluation eligibility
// @Tags         evaluations
// @Produce      json
// @Param        student_id  query     int  true  "Student ID"
// @Param        offer_id    query     int  true  "Offer ID"
// @Success      200         {object}  response.Response{data=map[string]bool}
// @Failure      400         {object}  response.Response
// @Router       /evaluations/eligibility [get]
// @Security     BearerAuth
func (h *EvaluationHandler) IsEligible(c *gin.Context) {
	studentID, err := queryID(c, "student_id")
	if err != nil {
		c.Error(err)
		return
	}
	offerID, err := queryID(c, "offer_id")
	if err != nil {
		c.Error(err)
		return
	}

	eligible, err := h.evaluationUC.IsEligible(c.Request.Context(), actorFrom(c), studentID, offerID)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Eligibility checked", gin.H{"eligible": eligible})
}

// Document godoc
// @Summary      Download one side of an evaluation
// @Tags         evaluations
// @Produce      application/pdf
// @Param        id    path    int     true  "Evaluation ID"
// @Param        side  path    string  true  "employer or instructor"
// @Success      200   {file}  file
// @Failure      403   {object}  response.Response
// @Failure      404   {object}  response.Response
// @Router       /evaluations/{id}/document/{side} [get]
// @Security     BearerAuth
func (h *EvaluationHandler) Document(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}
	side := domain.EvaluationSide(c.Param("side"))

	data, err := h.evaluationUC.Document(c.Request.Context(), actorFrom(c), id, side)
	if err != nil {
		c.Error(err)
		return
	}

	response.File(c, "application/pdf", fmt.Sprintf("evaluation-%d-%s.pdf", id, side), true, data)
}
