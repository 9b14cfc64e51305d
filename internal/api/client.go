package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/alcyxob/FitnessClient-sub001/internal/domain"
)

// TokenSource supplies the bearer token for authenticated requests. The auth
// session implements it; tests inject a static one.
type TokenSource func(ctx context.Context) (string, error)

// DefaultTimeout bounds every API request unless the caller's context is
// stricter.
const DefaultTimeout = 30 * time.Second

// Client is the typed HTTP client for the fitness-app backend API
// (JSON over HTTPS, bearer-token authenticated).
type Client struct {
	baseURL string
	http    *http.Client
	token   TokenSource
	logger  *zap.Logger
}

// NewClient creates an API client for the given base URL (including the
// /api/v1 prefix). A nil httpClient falls back to a default with DefaultTimeout.
func NewClient(baseURL string, token TokenSource, httpClient *http.Client, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		token:   token,
		logger:  logger,
	}
}

// BaseURL returns the configured API base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// do performs one authenticated JSON round trip. A nil body sends no payload;
// a nil out discards the response body.
func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.token != nil {
		token, err := c.token(ctx)
		if err != nil {
			return &Error{Kind: KindUnauthorized, Message: "no valid session", cause: err}
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("request failed at transport level",
			zap.String("method", method), zap.String("path", path), zap.Error(err))
		return transportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		apiErr := statusError(resp.StatusCode, strings.TrimSpace(string(raw)))
		c.logger.Debug("request rejected",
			zap.String("method", method), zap.String("path", path),
			zap.Int("status", resp.StatusCode))
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return decodeError(err)
	}
	return nil
}

// === Auth ===

// Login exchanges credentials for a bearer token. It ignores the client's
// TokenSource; there is no session yet when it runs.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	data, err := json.Marshal(loginRequest{Email: email, Password: password})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal credentials: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/login", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, transportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, statusError(resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var result LoginResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, decodeError(err)
	}
	return &result, nil
}

// === Collection reads ===

func (c *Client) ListUsers(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	if err := c.do(ctx, http.MethodGet, "/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// ListTrainerClients returns the clients managed by the authenticated trainer.
func (c *Client) ListTrainerClients(ctx context.Context) ([]domain.User, error) {
	var clients []domain.User
	if err := c.do(ctx, http.MethodGet, "/trainer/clients", nil, &clients); err != nil {
		return nil, err
	}
	return clients, nil
}

func (c *Client) ListExercises(ctx context.Context) ([]domain.Exercise, error) {
	var exercises []domain.Exercise
	if err := c.do(ctx, http.MethodGet, "/exercises", nil, &exercises); err != nil {
		return nil, err
	}
	return exercises, nil
}

func (c *Client) ListClientWorkouts(ctx context.Context) ([]domain.Workout, error) {
	var workouts []domain.Workout
	if err := c.do(ctx, http.MethodGet, "/client/workouts", nil, &workouts); err != nil {
		return nil, err
	}
	return workouts, nil
}

func (c *Client) ListClientAssignments(ctx context.Context) ([]domain.Assignment, error) {
	var assignments []domain.Assignment
	if err := c.do(ctx, http.MethodGet, "/client/assignments", nil, &assignments); err != nil {
		return nil, err
	}
	return assignments, nil
}

// === Record upserts and deletes (sync flush) ===
//
// The server upserts by ID; for a record created offline under a placeholder
// ID the response carries the canonical server copy.

func (c *Client) PutUser(ctx context.Context, user domain.User) (domain.User, error) {
	var saved domain.User
	err := c.do(ctx, http.MethodPut, "/users/"+user.ID, user, &saved)
	return saved, err
}

func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/users/"+id, nil, nil)
}

func (c *Client) PutExercise(ctx context.Context, exercise domain.Exercise) (domain.Exercise, error) {
	var saved domain.Exercise
	err := c.do(ctx, http.MethodPut, "/exercises/"+exercise.ID, exercise, &saved)
	return saved, err
}

func (c *Client) DeleteExercise(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/exercises/"+id, nil, nil)
}

func (c *Client) PutWorkout(ctx context.Context, workout domain.Workout) (domain.Workout, error) {
	var saved domain.Workout
	err := c.do(ctx, http.MethodPut, "/workouts/"+workout.ID, workout, &saved)
	return saved, err
}

func (c *Client) DeleteWorkout(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/workouts/"+id, nil, nil)
}

func (c *Client) PutAssignment(ctx context.Context, assignment domain.Assignment) (domain.Assignment, error) {
	var saved domain.Assignment
	err := c.do(ctx, http.MethodPut, "/assignments/"+assignment.ID, assignment, &saved)
	return saved, err
}

func (c *Client) DeleteAssignment(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/assignments/"+id, nil, nil)
}

// === Trainer mutations ===

func (c *Client) CreatePlan(ctx context.Context, clientID string, req CreatePlanRequest) (*domain.TrainingPlan, error) {
	var plan domain.TrainingPlan
	if err := c.do(ctx, http.MethodPost, "/trainer/clients/"+clientID+"/plans", req, &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

func (c *Client) CreateAssignment(ctx context.Context, req CreateAssignmentRequest) (*domain.Assignment, error) {
	var assignment domain.Assignment
	if err := c.do(ctx, http.MethodPost, "/trainer/assignments", req, &assignment); err != nil {
		return nil, err
	}
	return &assignment, nil
}

// === Client mutations ===

// UpdateAssignmentStatus patches the assignment's workflow status and returns
// the server's updated copy.
func (c *Client) UpdateAssignmentStatus(ctx context.Context, assignmentID string, status domain.AssignmentStatus, clientNotes string) (*domain.Assignment, error) {
	var assignment domain.Assignment
	req := updateStatusRequest{Status: status, ClientNotes: clientNotes}
	if err := c.do(ctx, http.MethodPatch, "/client/assignments/"+assignmentID+"/status", req, &assignment); err != nil {
		return nil, err
	}
	return &assignment, nil
}

// === Upload protocol ===

// RequestUploadURL asks the server for a presigned upload target for the
// assignment's video. Step 1 of the upload protocol; no side effects on failure.
func (c *Client) RequestUploadURL(ctx context.Context, assignmentID, contentType string) (*UploadURLResponse, error) {
	var target UploadURLResponse
	req := uploadURLRequest{ContentType: contentType}
	if err := c.do(ctx, http.MethodPost, "/client/assignments/"+assignmentID+"/upload-url", req, &target); err != nil {
		return nil, err
	}
	return &target, nil
}

// ConfirmUpload reports a completed direct upload. Step 3 of the protocol;
// the server advances the assignment to submitted and returns the updated copy.
func (c *Client) ConfirmUpload(ctx context.Context, assignmentID string, req ConfirmUploadRequest) (*domain.Assignment, error) {
	var assignment domain.Assignment
	if err := c.do(ctx, http.MethodPost, "/client/assignments/"+assignmentID+"/upload-confirm", req, &assignment); err != nil {
		return nil, err
	}
	return &assignment, nil
}
