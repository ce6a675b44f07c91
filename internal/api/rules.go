package api

import (
	"fmt"
	"net/http"

	"github.com/nerrad567/smarthome-core/internal/automation"
)

type createRuleRequest struct {
	HomeID    int64  `json:"home_id"`
	Condition string `json:"condition"`
	Action    string `json:"action"`
}

func (s *Server) handleCreateRule(w http.ResponseWriter, r *http.Request) {
	var req createRuleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	rule := &automation.Rule{HomeID: req.HomeID, Condition: req.Condition, Action: req.Action}
	if err := automation.ValidateRule(rule); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	if err := s.rules.CreateRule(r.Context(), rule); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	s.recordAudit(r, fmt.Sprintf("Created rule in home %d", rule.HomeID))
	writeJSON(w, http.StatusCreated, rule)
}

func (s *Server) handleListRulesByHome(w http.ResponseWriter, r *http.Request) {
	homeID, ok := pathID(w, r, "homeID")
	if !ok {
		return
	}

	rules, err := s.rules.ListRulesByHome(r.Context(), homeID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rules)
}

func (s *Server) handleDeleteRule(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := s.rules.DeleteRule(r.Context(), id); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	s.recordAudit(r, fmt.Sprintf("Deleted rule %d", id))
	writeJSON(w, http.StatusOK, map[string]string{"detail": "Rule deleted"})
}
