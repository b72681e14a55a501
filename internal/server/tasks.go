package server

import (
	"net/http"

	taskdomain "github.com/cityville/laundromat/internal/task/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) CreateTask(c *gin.Context) {
	var req taskdomain.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.tasksvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListTasks(c *gin.Context) {
	var f taskdomain.ListTaskFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	tasks, page, err := s.tasksvc.List(c.Request.Context(), f)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": tasks, "page_info": page})
}

func (s *Server) GetTaskByID(c *gin.Context) {
	resp, err := s.tasksvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateTask(c *gin.Context) {
	var req taskdomain.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.tasksvc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateTaskStatus(c *gin.Context) {
	var req taskdomain.UpdateTaskStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.tasksvc.UpdateStatus(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) AdvanceTask(c *gin.Context) {
	var req taskdomain.AdvanceTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.tasksvc.Advance(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteTask(c *gin.Context) {
	if err := s.tasksvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (s *Server) TaskStats(c *gin.Context) {
	resp, err := s.tasksvc.Stats(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func isTaskValidationError(err error) bool {
	switch err {
	case taskdomain.ErrInvalidStatus,
		taskdomain.ErrInvalidPriority,
		taskdomain.ErrInvalidSteps,
		taskdomain.ErrInvalidTitle,
		taskdomain.ErrInvalidReference:
		return true
	default:
		return false
	}
}
