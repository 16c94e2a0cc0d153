package odootest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

type listResponse struct {
	Count   int              `json:"count"`
	Results []map[string]any `json:"results"`
}

func (s *Server) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		uid, ok := s.caller(c)
		if !ok || uid == 0 {
			return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
		}
		return next(c)
	}
}

func (s *Server) injectFailures(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		s.mu.Lock()
		var status int
		if len(s.failNext) > 0 {
			status = s.failNext[0]
			s.failNext = s.failNext[1:]
		}
		s.mu.Unlock()

		if status != 0 {
			return echo.NewHTTPError(status, http.StatusText(status))
		}
		return next(c)
	}
}

// condition is one [field, operator, value] term of an Odoo domain.
type condition struct {
	field string
	op    string
	value any
}

func parseDomain(raw string) ([]condition, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var terms [][]any
	if err := json.Unmarshal([]byte(raw), &terms); err != nil {
		return nil, fmt.Errorf("domain: %w", err)
	}
	out := make([]condition, 0, len(terms))
	for _, t := range terms {
		if len(t) != 3 {
			return nil, fmt.Errorf("domain term must have 3 elements, got %d", len(t))
		}
		field, ok1 := t[0].(string)
		op, ok2 := t[1].(string)
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("domain term %v is malformed", t)
		}
		switch op {
		case "=", "!=", "ilike":
		default:
			return nil, fmt.Errorf("unsupported operator %q", op)
		}
		out = append(out, condition{field: field, op: op, value: t[2]})
	}
	return out, nil
}

func (cond condition) match(row map[string]any) bool {
	v := row[cond.field]
	switch cond.op {
	case "=":
		return fmt.Sprint(v) == fmt.Sprint(cond.value)
	case "!=":
		return fmt.Sprint(v) != fmt.Sprint(cond.value)
	default:
		return strings.Contains(strings.ToLower(fmt.Sprint(v)), strings.ToLower(fmt.Sprint(cond.value)))
	}
}

func intParam(c echo.Context, name string) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, name+" must be a non-negative integer")
	}
	return n, nil
}

func (s *Server) listRecords(c echo.Context) error {
	limit, err := intParam(c, "limit")
	if err != nil {
		return err
	}
	offset, err := intParam(c, "offset")
	if err != nil {
		return err
	}
	domain, err := parseDomain(c.QueryParam("domain"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	search := strings.ToLower(strings.TrimSpace(c.QueryParam("search")))

	var fields []string
	if f := c.QueryParam("fields"); f != "" {
		fields = strings.Split(f, ",")
	}

	matched := make([]map[string]any, 0)
	for _, row := range s.Records(c.Param("model")) {
		if search != "" && !strings.Contains(strings.ToLower(fmt.Sprint(row["name"])), search) {
			continue
		}
		ok := true
		for _, cond := range domain {
			if !cond.match(row) {
				ok = false
				break
			}
		}
		if ok {
			matched = append(matched, project(row, fields))
		}
	}

	total := len(matched)
	if offset > total {
		offset = total
	}
	page := matched[offset:]
	if limit > 0 && limit < len(page) {
		page = page[:limit]
	}
	return c.JSON(http.StatusOK, listResponse{Count: total, Results: page})
}

func project(row map[string]any, fields []string) map[string]any {
	if len(fields) == 0 {
		return row
	}
	out := map[string]any{"id": row["id"]}
	for _, f := range fields {
		if v, ok := row[strings.TrimSpace(f)]; ok {
			out[strings.TrimSpace(f)] = v
		}
	}
	return out
}

func recordID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid record id")
	}
	return id, nil
}

// find must be called with mu held.
func (col *collection) find(id int64) int {
	for i, r := range col.rows {
		if rid, _ := toInt64(r["id"]); rid == id {
			return i
		}
	}
	return -1
}

func (s *Server) getRecord(c echo.Context) error {
	id, err := recordID(c)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	col := s.collection(c.Param("model"))
	i := col.find(id)
	if i < 0 {
		return echo.NewHTTPError(http.StatusNotFound, "Record not found")
	}
	return c.JSON(http.StatusOK, col.rows[i])
}

func bindValues(c echo.Context) (map[string]any, error) {
	var values map[string]any
	if err := json.NewDecoder(c.Request().Body).Decode(&values); err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "body must be a JSON object")
	}
	delete(values, "id")
	return values, nil
}

func (s *Server) createRecord(c echo.Context) error {
	values, err := bindValues(c)
	if err != nil {
		return err
	}
	if name, _ := values["name"].(string); strings.TrimSpace(name) == "" {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "Field 'name' is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	col := s.collection(c.Param("model"))
	values["id"] = col.nextID
	col.nextID++
	col.rows = append(col.rows, values)
	return c.JSON(http.StatusCreated, values)
}

func (s *Server) updateRecord(c echo.Context) error {
	id, err := recordID(c)
	if err != nil {
		return err
	}
	values, err := bindValues(c)
	if err != nil {
		return err
	}
	if name, ok := values["name"]; ok {
		if str, _ := name.(string); strings.TrimSpace(str) == "" {
			return echo.NewHTTPError(http.StatusUnprocessableEntity, "Field 'name' is required")
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	col := s.collection(c.Param("model"))
	i := col.find(id)
	if i < 0 {
		return echo.NewHTTPError(http.StatusNotFound, "Record not found")
	}
	for k, v := range values {
		col.rows[i][k] = v
	}
	return c.JSON(http.StatusOK, col.rows[i])
}

func (s *Server) deleteRecord(c echo.Context) error {
	id, err := recordID(c)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	col := s.collection(c.Param("model"))
	i := col.find(id)
	if i < 0 {
		return echo.NewHTTPError(http.StatusNotFound, "Record not found")
	}
	col.rows = append(col.rows[:i], col.rows[i+1:]...)
	return c.NoContent(http.StatusNoContent)
}
