package v1

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rilesCL/Projet-Leandrose-sub000/internal/delivery/http/middleware"
	"github.com/rilesCL/Projet-Leandrose-sub000/internal/delivery/http/response"
	"github.com/rilesCL/Projet-Leandrose-sub000/internal/domain"
)

type ApplicationHandler struct {
	applicationUC domain.ApplicationUsecase
}

// NewApplicationHandler registers application routes
func NewApplicationHandler(r *gin.RouterGroup, mutations gin.HandlerFunc, applicationUC domain.ApplicationUsecase) {
	handler := &ApplicationHandler{applicationUC: applicationUC}

	students := r.Group("/students", middleware.RequireRole(domain.RoleStudent))
	{
		students.POST("/offers/:offerId/apply", mutations, handler.Apply)
		students.GET("/applications", handler.GetMyApplications)
		students.POST("/applications/:id/accept", mutations, handler.AcceptByStudent)
		students.POST("/applications/:id/reject", mutations, handler.RejectByStudent)
	}

	employers := r.Group("/employers", middleware.RequireRole(domain.RoleEmployer))
	{
		employers.GET("/offers/:offerId/applications", handler.ListByOffer)
		employers.POST("/applications/:id/accept", mutations, handler.AcceptByEmployer)
		employers.POST("/applications/:id/reject", mutations, handler.RejectByEmployer)
		employers.POST("/applications/:id/convene", mutations, handler.Convene)
	}

	r.GET("/applications/:id", handler.GetByID)
}

// ApplyRequest is the request payload for applying to an offer
type ApplyRequest struct {
	CVID int64 `json:"cv_id" binding:"required,gt=0"`
}

// Apply godoc
// @Summary      Apply to an offer
// @Description  Submit a candidature with one of the student's approved CVs (Student only)
// @Tags         applications
// @Accept       json
// @Produce      json
// @Param        offerId  path      int           true  "Offer ID"
// @Param        body     body      ApplyRequest  true  "Application data"
// @Success      201      {object}  response.Response{data=domain.Application}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Router       /students/offers/{offerId}/apply [post]
// @Security     BearerAuth
func (h *ApplicationHandler) Apply(c *gin.Context) {
	offerID, err := pathID(c, "offerId")
	if err != nil {
		c.Error(err)
		return
	}

	var req ApplyRequest
	if err := bindJSON(c, &req); err != nil {
		c.Error(err)
		return
	}

	app, err := h.applicationUC.Apply(c.Request.Context(), actorFrom(c).ID, offerID, req.CVID)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusCreated, "Application submitted successfully", app)
}

// GetMyApplications godoc
// @Summary      Get my applications
// @Description  Get all applications submitted by the current student
// @Tags         applications
// @Produce      json
// @Success      200  {object}  response.Response{data=[]domain.Application}
// @Failure      401  {object}  response.Response
// @Router       /students/applications [get]
// @Security     BearerAuth
func (h *ApplicationHandler) GetMyApplications(c *gin.Context) {
	applications, err := h.applicationUC.GetMyApplications(c.Request.Context(), actorFrom(c).ID)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Applications retrieved", applications)
}

// AcceptByStudent godoc
// @Summary      Accept an offer
// @Description  Confirm an application the employer already accepted (Student only)
// @Tags         applications
// @Produce      json
// @Param        id   path      int  true  "Application ID"
// @Success      200  {object}  response.Response{data=domain.Application}
// @Failure      403  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Failure      422  {object}  response.Response
// @Router       /students/applications/{id}/accept [post]
// @Security     BearerAuth
func (h *ApplicationHandler) AcceptByStudent(c *gin.Context) {
	h.decide(c, h.applicationUC.AcceptByStudent, "Application accepted")
}

// RejectByStudent godoc
// @Summary      Decline an offer
// @Description  Decline an application the employer already accepted (Student only)
// @Tags         applications
// @Produce      json
// @Param        id   path      int  true  "Application ID"
// @Success      200  {object}  response.Response{data=domain.Application}
// @Failure      403  {object}  response.Response
// @Failure      422  {object}  response.Response
// @Router       /students/applications/{id}/reject [post]
// @Security     BearerAuth
func (h *ApplicationHandler) RejectByStudent(c *gin.Context) {
	h.decide(c, h.applicationUC.RejectByStudent, "Application rejected")
}

// AcceptByEmployer godoc
// @Summary      Accept a candidature
// @Description  Accept a pending application on one of the employer's offers (Employer only)
// @Tags         applications
// @Produce      json
// @Param        id   path      int  true  "Application ID"
// @Success      200  {object}  response.Response{data=domain.Application}
// @Failure      403  {object}  response.Response
// @Failure      422  {object}  response.Response
// @Router       /employers/applications/{id}/accept [post]
// @Security     BearerAuth
func (h *ApplicationHandler) AcceptByEmployer(c *gin.Context) {
	h.decide(c, h.applicationUC.AcceptByEmployer, "Application accepted")
}

// RejectByEmployer godoc
// @Summary      Reject a candidature
// @Description  Reject a pending application on one of the employer's offers (Employer only)
// @Tags         applications
// @Produce      json
// @Param        id   path      int  true  "Application ID"
// @Success      200  {object}  response.Response{data=domain.Application}
// @Failure      403  {object}  response.Response
// @Failure      422  {object}  response.Response
// @Router       /employers/applications/{id}/reject [post]
// @Security     BearerAuth
func (h *ApplicationHandler) RejectByEmployer(c *gin.Context) {
	h.decide(c, h.applicationUC.RejectByEmployer, "Application rejected")
}

type decision func(ctx context.Context, actorID, applicationID int64) (*domain.Application, error)

func (h *ApplicationHandler) decide(c *gin.Context, fn decision, message string) {
	id, err := pathID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	app, err := fn(c.Request.Context(), actorFrom(c).ID, id)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, message, app)
}

// Convene godoc
// @Summary      Convene a candidate
// @Description  Schedule an interview for a non-terminal application (Employer only)
// @Tags         applications
// @Accept       json
// @Produce      json
// @Param        id    path      int                 true  "Application ID"
// @Param        body  body      domain.Convocation  true  "Interview details"
// @Success      200   {object}  response.Response{data=domain.Application}
// @Failure      400   {object}  response.Response
// @Failure      403   {object}  response.Response
// @Failure      422   {object}  response.Response
// @Router       /employers/applications/{id}/convene [post]
// @Security     BearerAuth
func (h *ApplicationHandler) Convene(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	var conv domain.Convocation
	if err := bindJSON(c, &conv); err != nil {
		c.Error(err)
		return
	}

	app, err := h.applicationUC.Convene(c.Request.Context(), actorFrom(c).ID, id, conv)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Candidate convened", app)
}

// ListByOffer godoc
// @Summary      List applications for an offer
// @Description  Get all applications for one of the employer's offers (Employer only)
// @Tags         applications
// @Produce      json
// @Param        offerId  path      int  true  "Offer ID"
// @Success      200      {object}  response.Response{data=[]domain.Application}
// @Failure      403      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /employers/offers/{offerId}/applications [get]
// @Security     BearerAuth
func (h *ApplicationHandler) ListByOffer(c *gin.Context) {
	offerID, err := pathID(c, "offerId")
	if err != nil {
		c.Error(err)
		return
	}

	applications, err := h.applicationUC.ListByOffer(c.Request.Context(), actorFrom(c).ID, offerID)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Applications retrieved", applications)
}

// GetByID godoc
// @Summary      Get application detail
// @Description  Visible to the applicant, the offer's employer and managers
// @Tags         applications
// @Produce      json
// @Param        id   path      int  true  "Application ID"
// @Success      200  {object}  response.Response{data=domain.Application}
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /applications/{id} [get]
// @Security     BearerAuth
func (h *ApplicationHandler) GetByID(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	app, err := h.applicationUC.GetByID(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Application retrieved", app)
}
