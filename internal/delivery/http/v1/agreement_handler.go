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

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type AgreementHandler struct {
	agreementUC domain.AgreementUsecase
}

// NewAgreementHandler registers agreement routes
func NewAgreementHandler(r *gin.RouterGroup, mutations gin.HandlerFunc, agreementUC domain.AgreementUsecase) {
	handler := &AgreementHandler{agreementUC: agreementUC}

	students := r.Group("/students", middleware.RequireRole(domain.RoleStudent))
	{
		students.GET("/agreements", handler.ListMine)
		students.POST("/agreements/:id/sign", mutations, handler.SignAsStudent)
	}

	employers := r.Group("/employers", middleware.RequireRole(domain.RoleEmployer))
	{
		employers.GET("/agreements", handler.ListMine)
		employers.POST("/agreements/:id/sign", mutations, handler.SignAsEmployer)
	}

	instructors := r.Group("/instructors", middleware.RequireRole(domain.RoleInstructor))
	{
		instructors.GET("/agreements", handler.ListMine)
	}

	managers := r.Group("/managers", middleware.RequireRole(domain.RoleManager))
	{
		managers.GET("/agreements", handler.ListAll)
		managers.GET("/agreements/export", handler.Export)
		managers.POST("/agreements", mutations, handler.Create)
		managers.PATCH("/agreements/:id", mutations, handler.Update)
		managers.DELETE("/agreements/:id", mutations, handler.Delete)
		managers.POST("/agreements/:id/validate", mutations, handler.ValidateAndGenerate)
		managers.POST("/agreements/:id/sign", mutations, handler.SignAsManager)
		managers.POST("/agreements/:id/instructor", mutations, handler.AssignInstructor)
	}

	r.GET("/agreements/:id", handler.GetByID)
	r.GET("/agreements/:id/document", handler.Document)
}

// AssignInstructorRequest names the supervising instructor
type AssignInstructorRequest struct {
	InstructorID int64 `json:"instructor_id" binding:"required,gt=0"`
}

// Create godoc
// @Summary      Create an agreement
// @Description  Draft the agreement of an accepted application (Manager only)
// @Tags         agreements
// @Accept       json
// @Produce      json
// @Param        body  body      domain.AgreementDraft  true  "Agreement draft"
// @Success      201   {object}  response.Response{data=domain.Agreement}
// @Failure      400   {object}  response.Response
// @Failure      404   {object}  response.Response
// @Failure      409   {object}  response.Response
// @Failure      422   {object}  response.Response
// @Router       /managers/agreements [post]
// @Security     BearerAuth
func (h *AgreementHandler) Create(c *gin.Context) {
	var draft domain.AgreementDraft
	if err := bindJSON(c, &draft); err != nil {
		c.Error(err)
		return
	}

	ag, err := h.agreementUC.Create(c.Request.Context(), actorFrom(c).ID, draft)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusCreated, "Agreement created", ag)
}

// Update godoc
// @Summary      Edit a draft agreement
// @Description  Change the terms of an agreement still in DRAFT (Manager only)
// @Tags         agreements
// @Accept       json
// @Produce      json
// @Param        id    path      int                    true  "Agreement ID"
// @Param        body  body      domain.AgreementPatch  true  "Fields to change"
// @Success      200   {object}  response.Response{data=domain.Agreement}
// @Failure      400   {object}  response.Response
// @Failure      409   {object}  response.Response
// @Failure      422   {object}  response.Response
// @Router       /managers/agreements/{id} [patch]
// @Security     BearerAuth
func (h *AgreementHandler) Update(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	var patch domain.AgreementPatch
	if err := bindJSON(c, &patch); err != nil {
		c.Error(err)
		return
	}

	ag, err := h.agreementUC.Update(c.Request.Context(), actorFrom(c).ID, id, patch)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Agreement updated", ag)
}

// Delete godoc
// @Summary      Delete a draft agreement
// @Tags         agreements
// @Produce      json
// @Param        id   path      int  true  "Agreement ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      422  {object}  response.Response
// @Router       /managers/agreements/{id} [delete]
// @Security     BearerAuth
func (h *AgreementHandler) Delete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	if err := h.agreementUC.Delete(c.Request.Context(), actorFrom(c).ID, id); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Agreement deleted", nil)
}

// ValidateAndGenerate godoc
// @Summary      Validate a draft and generate its document
// @Description  Renders the agreement PDF and opens it for signatures (Manager only)
// @Tags         agreements
// @Produce      json
// @Param        id   path      int  true  "Agreement ID"
// @Success      200  {object}  response.Response{data=domain.Agreement}
// @Failure      400  {object}  response.Response
// @Failure      422  {object}  response.Response
// @Failure      500  {object}  response.Response
// @Router       /managers/agreements/{id}/validate [post]
// @Security     BearerAuth
func (h *AgreementHandler) ValidateAndGenerate(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	ag, err := h.agreementUC.ValidateAndGenerate(c.Request.Context(), actorFrom(c).ID, id)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Agreement ready for signatures", ag)
}

// AssignInstructor godoc
// @Summary      Assign the supervising instructor
// @Tags         agreements
// @Accept       json
// @Produce      json
// @Param        id    path      int                      true  "Agreement ID"
// @Param        body  body      AssignInstructorRequest  true  "Instructor"
// @Success      200   {object}  response.Response{data=domain.Agreement}
// @Failure      400   {object}  response.Response
// @Failure      422   {object}  response.Response
// @Router       /managers/agreements/{id}/instructor [post]
// @Security     BearerAuth
func (h *AgreementHandler) AssignInstructor(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	var req AssignInstructorRequest
	if err := bindJSON(c, &req); err != nil {
		c.Error(err)
		return
	}

	ag, err := h.agreementUC.AssignInstructor(c.Request.Context(), actorFrom(c).ID, id, req.InstructorID)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Instructor assigned", ag)
}

// SignAsStudent godoc
// @Summary      Sign as the student
// @Tags         agreements
// @Produce      json
// @Param        id   path      int  true  "Agreement ID"
// @Success      200  {object}  response.Response{data=domain.Agreement}
// @Failure      403  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Failure      422  {object}  response.Response
// @Router       /students/agreements/{id}/sign [post]
// @Security     BearerAuth
func (h *AgreementHandler) SignAsStudent(c *gin.Context) {
	h.sign(c, h.agreementUC.SignAsStudent)
}

// SignAsEmployer godoc
// @Summary      Sign as the employer
// @Tags         agreements
// @Produce      json
// @Param        id   path      int  true  "Agreement ID"
// @Success      200  {object}  response.Response{data=domain.Agreement}
// @Failure      403  {object}  response.Response
// @Failure      422  {object}  response.Response
// @Router       /employers/agreements/{id}/sign [post]
// @Security     BearerAuth
func (h *AgreementHandler) SignAsEmployer(c *gin.Context) {
	h.sign(c, h.agreementUC.SignAsEmployer)
}

// SignAsManager godoc
// @Summary      Sign as the internship manager
// @Tags         agreements
// @Produce      json
// @Param        id   path      int  true  "Agreement ID"
// @Success      200  {object}  response.Response{data=domain.Agreement}
// @Failure      422  {object}  response.Response
// @Router       /managers/agreements/{id}/sign [post]
// @Security     BearerAuth
func (h *AgreementHandler) SignAsManager(c *gin.Context) {
	h.sign(c, h.agreementUC.SignAsManager)
}

type signature func(ctx context.Context, actorID, agreementID int64) (*domain.Agreement, error)

func (h *AgreementHandler) sign(c *gin.Context, fn signature) {
	id, err := pathID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	ag, err := fn(c.Request.Context(), actorFrom(c).ID, id)
	if err != nil {
		c.Error(err)
		return
	}

	message := "Agreement signed"
	if ag.Status == domain.AgreementStatusValidated {
		message = "Agreement signed and validated"
	}
	response.Success(c, http.StatusOK, message, ag)
}

// ListMine godoc
// @Summary      List my agreements
// @Description  Agreements the caller is a party to, or supervises
// @Tags         agreements
// @Produce      json
// @Success      200  {object}  response.Response{data=[]domain.Agreement}
// @Router       /students/agreements [get]
// @Router       /employers/agreements [get]
// @Router       /instructors/agreements [get]
// @Security     BearerAuth
func (h *AgreementHandler) ListMine(c *gin.Context) {
	list, err := h.agreementUC.ListForActor(c.Request.Context(), actorFrom(c))
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Agreements retrieved", list)
}

// ListAll godoc
// @Summary      List all agreements
// @Tags         agreements
// @Produce      json
// @Param        status  query     string  false  "DRAFT, AWAITING_SIGNATURES or VALIDATED"
// @Success      200     {object}  response.Response{data=[]domain.Agreement}
// @Failure      400     {object}  response.Response
// @Router       /managers/agreements [get]
// @Security     BearerAuth
func (h *AgreementHandler) ListAll(c *gin.Context) {
	list, err := h.agreementUC.ListAll(c.Request.Context(), domain.AgreementStatus(c.Query("status")))
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Agreements retrieved", list)
}

// Export godoc
// @Summary      Export agreements to Excel
// @Tags         agreements
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        status  query  string  false  "DRAFT, AWAITING_SIGNATURES or VALIDATED"
// @Success      200     {file}  file
// @Failure      400     {object}  response.Response
// @Router       /managers/agreements/export [get]
// @Security     BearerAuth
func (h *AgreementHandler) Export(c *gin.Context) {
	data, filename, err := h.agreementUC.Export(c.Request.Context(), domain.AgreementStatus(c.Query("status")))
	if err != nil {
		c.Error(err)
		return
	}

	response.File(c, xlsxContentType, filename, false, data)
}

// GetByID godoc
// @Summary      Get agreement detail
// @Tags         agreements
// @Produce      json
// @Param        id   path      int  true  "Agreement ID"
// @Success      200  {object}  response.Response{data=domain.Agreement}
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /agreements/{id} [get]
// @Security     BearerAuth
func (h *AgreementHandler) GetByID(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	ag, err := h.agreementUC.GetByID(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Agreement retrieved", ag)
}

// Document godoc
// @Summary      Download the agreement PDF
// @Tags         agreements
// @Produce      application/pdf
// @Param        id   path    int  true  "Agreement ID"
// @Success      200  {file}  file
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /agreements/{id}/document [get]
// @Security     BearerAuth
func (h *AgreementHandler) Document(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	data, err := h.agreementUC.Document(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		c.Error(err)
		return
	}

	response.File(c, "application/pdf", fmt.Sprintf("agreement-%d.pdf", id), true, data)
}
