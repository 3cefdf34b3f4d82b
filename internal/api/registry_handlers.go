package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dbward/dbward/internal/middleware"
	"github.com/dbward/dbward/internal/repository"
)

// RegistryHandler exposes read-only views of the backup target inventory.
// Records are managed externally; these endpoints only list and fetch.
type RegistryHandler struct {
	serverRepo   *repository.ServerRepository
	databaseRepo *repository.DatabaseConfigRepository
	policyRepo   *repository.PolicyRepository
}

func NewRegistryHandler(serverRepo *repository.ServerRepository, databaseRepo *repository.DatabaseConfigRepository, policyRepo *repository.PolicyRepository) *RegistryHandler {
	return &RegistryHandler{
		serverRepo:   serverRepo,
		databaseRepo: databaseRepo,
		policyRepo:   policyRepo,
	}
}

// ListServers handles GET /api/servers
func (h *RegistryHandler) ListServers(c *gin.Context) {
	servers, err := h.serverRepo.FindAll()
	if err != nil {
		middleware.HandleAppError(c, middleware.NewInternalError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"servers": servers, "count": len(servers)})
}

// ListDatabases handles GET /api/databases
func (h *RegistryHandler) ListDatabases(c *gin.Context) {
	databases, err := h.databaseRepo.FindAll()
	if err != nil {
		middleware.HandleAppError(c, middleware.NewInternalError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"databases": databases, "count": len(databases)})
}

// GetDatabase handles GET /api/databases/:id
func (h *RegistryHandler) GetDatabase(c *gin.Context) {
	database, err := h.databaseRepo.FindByID(c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			middleware.HandleAppError(c, middleware.NewNotFoundError("database"))
			return
		}
		middleware.HandleAppError(c, middleware.NewInternalError(err))
		return
	}
	c.JSON(http.StatusOK, database)
}

// ListPolicies handles GET /api/policies
func (h *RegistryHandler) ListPolicies(c *gin.Context) {
	policies, err := h.policyRepo.FindAll()
	if err != nil {
		middleware.HandleAppError(c, middleware.NewInternalError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"policies": policies, "count": len(policies)})
}

// GetPolicy handles GET /api/policies/:id
func (h *RegistryHandler) GetPolicy(c *gin.Context) {
	policy, err := h.policyRepo.FindByID(c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			middleware.HandleAppError(c, middleware.NewNotFoundError("policy"))
			return
		}
		middleware.HandleAppError(c, middleware.NewInternalError(err))
		return
	}
	c.JSON(http.StatusOK, policy)
}
