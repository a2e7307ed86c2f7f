package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"studyquest/internal/quest"
)

// RESTStore reaches the quest table through a PostgREST endpoint (Supabase
// exposes one under /rest/v1). The credential is sent as the bearer token and
// the anon key as apikey. Columns carry the quest's JSON names; the owner
// column is configurable. PostgREST returns rows in table order.
type RESTStore struct {
	baseURL    string
	anonKey    string
	table      string
	owner      string
	httpClient *http.Client
}

type RESTConfig struct {
	BaseURL     string
	AnonKey     string
	Table       string
	OwnerColumn string
	Timeout     time.Duration
}

func NewRESTStore(cfg RESTConfig) *RESTStore {
	table := cfg.Table
	if table == "" {
		table = DefaultTable
	}
	owner := cfg.OwnerColumn
	if owner == "" {
		owner = DefaultOwnerColumn
	}
	return &RESTStore{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		anonKey:    cfg.AnonKey,
		table:      table,
		owner:      owner,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// rowBody encodes r with the quest's own field names plus the owner column.
func (s *RESTStore) rowBody(r QuestRow) map[string]any {
	tasks := r.Tasks
	if tasks == nil {
		tasks = []quest.Task{}
	}
	return map[string]any{
		"id":            r.ID,
		"title":         r.Title,
		"icon":          r.Icon,
		"iconColor":     r.IconColor,
		"deadline":      r.Deadline,
		"deadlineBg":    r.DeadlineBg,
		"deadlineColor": r.DeadlineColor,
		"deadlineIcon":  r.DeadlineIcon,
		"progressColor": r.ProgressColor,
		"tasks":         tasks,
		s.owner:         r.UserID,
	}
}

func (s *RESTStore) endpoint(filters url.Values) string {
	u := s.baseURL + "/rest/v1/" + s.table
	if len(filters) > 0 {
		u += "?" + filters.Encode()
	}
	return u
}

func (s *RESTStore) do(ctx context.Context, cred Credential, method, target string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("apikey", s.anonKey)
	req.Header.Set("Authorization", "Bearer "+string(cred))
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Prefer", "return=minimal")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, s.table, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%s %s: unexpected status %d: %s", method, s.table, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (s *RESTStore) SelectQuestsForUser(ctx context.Context, cred Credential, user string) ([]quest.Quest, error) {
	filters := url.Values{}
	filters.Set("select", "*")
	filters.Set(s.owner, "eq."+user)

	var rows []quest.Quest
	if err := s.do(ctx, cred, http.MethodGet, s.endpoint(filters), nil, &rows); err != nil {
		return nil, remoteErr("select quests", err)
	}
	for i := range rows {
		if rows[i].Tasks == nil {
			rows[i].Tasks = []quest.Task{}
		}
	}
	return rows, nil
}

func (s *RESTStore) InsertQuests(ctx context.Context, cred Credential, rows []QuestRow) error {
	if len(rows) == 0 {
		return nil
	}
	payload := make([]map[string]any, len(rows))
	for i, r := range rows {
		payload[i] = s.rowBody(r)
	}
	return remoteErr("insert quests", s.do(ctx, cred, http.MethodPost, s.endpoint(nil), payload, nil))
}

func (s *RESTStore) UpdateQuestTasks(ctx context.Context, cred Credential, questID, user string, tasks []quest.Task) error {
	if tasks == nil {
		tasks = []quest.Task{}
	}
	filters := url.Values{}
	filters.Set("id", "eq."+questID)
	filters.Set(s.owner, "eq."+user)
	body := map[string]any{"tasks": tasks}
	return remoteErr("update quest tasks", s.do(ctx, cred, http.MethodPatch, s.endpoint(filters), body, nil))
}

func (s *RESTStore) Close() error {
	s.httpClient.CloseIdleConnections()
	return nil
}
