package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"ajopay/internal/middleware"
	"ajopay/internal/repository"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ClusterHandler manages agent savings groups and the join-code flow
// customers use to attach themselves to one.
type ClusterHandler struct {
	clusterRepo *repository.ClusterRepository
	userRepo    *repository.UserRepository
	contribRepo *repository.ContributionRepository
	commRepo    *repository.CommissionRepository
}

func NewClusterHandler(
	clusterRepo *repository.ClusterRepository,
	userRepo *repository.UserRepository,
	contribRepo *repository.ContributionRepository,
	commRepo *repository.CommissionRepository,
) *ClusterHandler {
	return &ClusterHandler{
		clusterRepo: clusterRepo,
		userRepo:    userRepo,
		contribRepo: contribRepo,
		commRepo:    commRepo,
	}
}

// Create is POST /agent/clusters.
func (h *ClusterHandler) Create(c *gin.Context) {
	agentID := middleware.GetUserID(c)
	var req struct {
		Name string `json:"name" binding:"required,min=2,max=64"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cluster, err := h.clusterRepo.Create(agentID, req.Name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create cluster"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"cluster": cluster})
}

// List is GET /agent/clusters, with member counts.
func (h *ClusterHandler) List(c *gin.Context) {
	agentID := middleware.GetUserID(c)
	clusters, err := h.clusterRepo.ListByAgent(agentID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load clusters"})
		return
	}
	out := make([]gin.H, 0, len(clusters))
	for _, cl := range clusters {
		n, _ := h.clusterRepo.MemberCount(cl.ID)
		out = append(out, gin.H{"cluster": cl, "member_count": n})
	}
	c.JSON(http.StatusOK, gin.H{"clusters": out})
}

// Members is GET /agent/clusters/:id/members. The cluster must belong to
// the requesting agent.
func (h *ClusterHandler) Members(c *gin.Context) {
	agentID := middleware.GetUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid cluster id"})
		return
	}
	cluster, err := h.clusterRepo.GetByID(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "cluster not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load cluster"})
		return
	}
	if cluster.AgentID != agentID {
		c.JSON(http.StatusForbidden, gin.H{"error": "not your cluster"})
		return
	}
	members, err := h.userRepo.ListByCluster(cluster.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load members"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cluster": cluster, "members": members, "count": len(members)})
}

// Join is POST /clusters/join: a customer attaches to a cluster by its
// join code. Rejoining the same cluster is a no-op.
func (h *ClusterHandler) Join(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req struct {
		JoinCode string `json:"join_code" binding:"required,len=6"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cluster, err := h.clusterRepo.GetByJoinCode(strings.ToUpper(req.JoinCode))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "invalid join code"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	user, err := h.userRepo.GetByID(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load user"})
		return
	}
	if user.ClusterID != nil && *user.ClusterID == cluster.ID {
		c.JSON(http.StatusOK, gin.H{"cluster": cluster, "joined": false})
		return
	}
	user.ClusterID = &cluster.ID
	if err := h.userRepo.Update(user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to join cluster"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cluster": cluster, "joined": true})
}

// AgentOverview is GET /agent/overview: collection totals, commission
// position and cluster headcount for the agent dashboard.
func (h *ClusterHandler) AgentOverview(c *gin.Context) {
	agentID := middleware.GetUserID(c)
	collected, err := h.contribRepo.SumCollectedByAgent(agentID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load collections"})
		return
	}
	pending, _ := h.commRepo.SumByAgentStatus(agentID, "PENDING")
	paid, _ := h.commRepo.SumByAgentStatus(agentID, "PAID")

	clusters, err := h.clusterRepo.ListByAgent(agentID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load clusters"})
		return
	}
	var members int64
	for _, cl := range clusters {
		n, _ := h.clusterRepo.MemberCount(cl.ID)
		members += n
	}

	c.JSON(http.StatusOK, gin.H{
		"total_collected_kobo":    collected,
		"commission_pending_kobo": pending,
		"commission_paid_kobo":    paid,
		"cluster_count":           len(clusters),
		"member_count":            members,
	})
}
