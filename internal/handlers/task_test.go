package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

type TaskHandlerTestSuite struct {
	suite.Suite
	router *gin.Engine
	db     *gorm.DB
}

func (suite *TaskHandlerTestSuite) SetupTest() {
	suite.router, suite.db = newTestApp(suite.T())

	seedUser(suite.T(), suite.db, 1, "Creator")
	seedUser(suite.T(), suite.db, 2, "Worker")
	seedGroup(suite.T(), suite.db, "Team")
}

func (suite *TaskHandlerTestSuite) createTask(assigneeIDs ...uint64) uint64 {
	w, body := doRequest(suite.T(), suite.router, "POST", "/api/tasks", gin.H{
		"title":        "Prepare report",
		"description":  "quarterly numbers",
		"date":         "2025-06-01",
		"time":         "12:00",
		"group_id":     1,
		"assignee_ids": assigneeIDs,
	}, 1)
	suite.Require().Equal(http.StatusCreated, w.Code)

	task := body["task"].(map[string]interface{})
	return uint64(task["id"].(float64))
}

func (suite *TaskHandlerTestSuite) TestCreateTask() {
	w, body := doRequest(suite.T(), suite.router, "POST", "/api/tasks", gin.H{
		"title":        "Prepare report",
		"description":  "quarterly numbers",
		"date":         "2025-06-01",
		"time":         "12:00",
		"group_id":     1,
		"assignee_ids": []uint64{2},
	}, 1)

	suite.Require().Equal(http.StatusCreated, w.Code)
	task := body["task"].(map[string]interface{})
	assert.Equal(suite.T(), "pending", task["status"])
	assert.Equal(suite.T(), []interface{}{float64(2)}, task["assigned_ids"])
}

func (suite *TaskHandlerTestSuite) TestCreateTaskMissingFields() {
	w, _ := doRequest(suite.T(), suite.router, "POST", "/api/tasks", gin.H{
		"title": "incomplete",
	}, 1)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func (suite *TaskHandlerTestSuite) TestRequiresIdentityHeader() {
	w, _ := doRequest(suite.T(), suite.router, "GET", "/api/tasks", nil, 0)
	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
}

func (suite *TaskHandlerTestSuite) TestAssigneeStatusFlow() {
	taskID := suite.createTask(2)

	// The assignee reports progress; the aggregate follows
	w, body := doRequest(suite.T(), suite.router, "PUT",
		fmt.Sprintf("/api/tasks/%d/assignees/2", taskID),
		gin.H{"status": "in_progress"}, 2)
	suite.Require().Equal(http.StatusOK, w.Code)
	assert.Equal(suite.T(), "in_progress", body["task_status"])

	w, body = doRequest(suite.T(), suite.router, "PUT",
		fmt.Sprintf("/api/tasks/%d/assignees/2", taskID),
		gin.H{"status": "completed"}, 2)
	suite.Require().Equal(http.StatusOK, w.Code)
	assert.Equal(suite.T(), "completed", body["task_status"])

	w, body = doRequest(suite.T(), suite.router, "GET",
		fmt.Sprintf("/api/tasks/%d", taskID), nil, 1)
	suite.Require().Equal(http.StatusOK, w.Code)
	task := body["task"].(map[string]interface{})
	assert.Equal(suite.T(), "completed", task["status"])
}

func (suite *TaskHandlerTestSuite) TestSetStatusInvalidValue() {
	taskID := suite.createTask(2)

	w, _ := doRequest(suite.T(), suite.router, "PUT",
		fmt.Sprintf("/api/tasks/%d/assignees/2", taskID),
		gin.H{"status": "done"}, 2)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func (suite *TaskHandlerTestSuite) TestGetStatusNotAssignee() {
	taskID := suite.createTask(2)

	w, _ := doRequest(suite.T(), suite.router, "GET",
		fmt.Sprintf("/api/tasks/%d/assignees/42", taskID), nil, 1)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

func (suite *TaskHandlerTestSuite) TestForceStatusDeniedWithAssignees() {
	taskID := suite.createTask(2)

	w, _ := doRequest(suite.T(), suite.router, "PUT",
		fmt.Sprintf("/api/tasks/%d/status", taskID),
		gin.H{"status": "completed"}, 2)
	assert.Equal(suite.T(), http.StatusForbidden, w.Code)

	// A super admin may override
	w, _ = doRequest(suite.T(), suite.router, "PUT",
		fmt.Sprintf("/api/tasks/%d/status", taskID),
		gin.H{"status": "completed"}, testSuperAdminID)
	assert.Equal(suite.T(), http.StatusOK, w.Code)
}

func (suite *TaskHandlerTestSuite) TestRemoveAssigneeRecomputes() {
	taskID := suite.createTask(2)

	w, _ := doRequest(suite.T(), suite.router, "PUT",
		fmt.Sprintf("/api/tasks/%d/assignees/2", taskID),
		gin.H{"status": "in_progress"}, 2)
	suite.Require().Equal(http.StatusOK, w.Code)

	w, _ = doRequest(suite.T(), suite.router, "DELETE",
		fmt.Sprintf("/api/tasks/%d/assignees/2", taskID), nil, 1)
	suite.Require().Equal(http.StatusOK, w.Code)

	w, body := doRequest(suite.T(), suite.router, "GET",
		fmt.Sprintf("/api/tasks/%d", taskID), nil, 1)
	suite.Require().Equal(http.StatusOK, w.Code)
	task := body["task"].(map[string]interface{})
	assert.Equal(suite.T(), "pending", task["status"])
}

func (suite *TaskHandlerTestSuite) TestListMyTasks() {
	suite.createTask(2)

	w, body := doRequest(suite.T(), suite.router, "GET", "/api/users/me/tasks", nil, 2)
	suite.Require().Equal(http.StatusOK, w.Code)
	tasks := body["tasks"].([]interface{})
	assert.Len(suite.T(), tasks, 1)

	w, body = doRequest(suite.T(), suite.router, "GET", "/api/users/me/tasks?scope=created", nil, 1)
	suite.Require().Equal(http.StatusOK, w.Code)
	tasks = body["tasks"].([]interface{})
	assert.Len(suite.T(), tasks, 1)
}

func (suite *TaskHandlerTestSuite) TestUpdateTaskForbiddenForOutsider() {
	taskID := suite.createTask(2)

	w, _ := doRequest(suite.T(), suite.router, "PATCH",
		fmt.Sprintf("/api/tasks/%d", taskID),
		gin.H{"field": "title", "value": "Hijacked"}, 2)
	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
}

func TestTaskHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(TaskHandlerTestSuite))
}
