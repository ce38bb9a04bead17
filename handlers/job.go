package handlers

import (
	"net/http"

	"github.com/dheeraj1717/fleet-manager/models"
	"github.com/gin-gonic/gin"
)

func CreateJobHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewJob
		if err := c.ShouldBindJSON(&input); err != nil {
			respondBindError(c, err)
			return
		}
		job, err := models.CreateJob(c.Request.Context(), &input)
		if err != nil {
			respondError(c, "handlers/job.go", "CreateJobHandler", input, err)
			return
		}
		c.JSON(http.StatusCreated, job)
	}
}

func UpdateJobHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		var input models.NewJob
		if err := c.ShouldBindJSON(&input); err != nil {
			respondBindError(c, err)
			return
		}
		job, err := models.UpdateJob(c.Request.Context(), id, &input)
		if err != nil {
			respondError(c, "handlers/job.go", "UpdateJobHandler", id, err)
			return
		}
		c.JSON(http.StatusOK, job)
	}
}

func DeleteJobHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		job, err := models.DeleteJob(c.Request.Context(), id)
		if err != nil {
			respondError(c, "handlers/job.go", "DeleteJobHandler", id, err)
			return
		}
		c.JSON(http.StatusOK, job)
	}
}

func GetJobHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		job, err := models.GetJob(c.Request.Context(), id)
		if err != nil {
			respondError(c, "handlers/job.go", "GetJobHandler", id, err)
			return
		}
		c.JSON(http.StatusOK, job)
	}
}

func GetJobsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := models.JobFilter{
			ClientId:  queryInt(c, "client_id"),
			StartDate: queryDate(c, "start_date"),
			EndDate:   queryDate(c, "end_date"),
			Unbilled:  c.Query("unbilled") == "true",
		}
		if v := c.Query("status"); v != "" {
			s := models.JobStatus(v)
			if !s.Valid() {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
				return
			}
			filter.Status = &s
		}
		jobs, err := models.GetJobs(c.Request.Context(), &filter)
		if err != nil {
			respondError(c, "handlers/job.go", "GetJobsHandler", nil, err)
			return
		}
		c.JSON(http.StatusOK, jobs)
	}
}
