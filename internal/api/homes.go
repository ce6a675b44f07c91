package api

import (
	"net/http"

	"github.com/nerrad567/smarthome-core/internal/location"
)

type createHomeRequest struct {
	Name    string  `json:"name"`
	Address *string `json:"address"`
}

func (s *Server) handleCreateHome(w http.ResponseWriter, r *http.Request) {
	var req createHomeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	home := &location.Home{Name: req.Name, Address: req.Address}
	if err := location.ValidateHome(home); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	if err := s.locations.CreateHome(r.Context(), home); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	s.recordAudit(r, "Created home: "+home.Name)
	writeJSON(w, http.StatusCreated, home)
}

func (s *Server) handleListHomes(w http.ResponseWriter, r *http.Request) {
	homes, err := s.locations.ListHomes(r.Context())
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, homes)
}

func (s *Server) handleGetHome(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	home, err := s.locations.GetHome(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, home)
}

type createRoomRequest struct {
	HomeID int64  `json:"home_id"`
	Name   string `json:"name"`
}

func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	room := &location.Room{HomeID: req.HomeID, Name: req.Name}
	if err := location.ValidateRoom(room); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	if err := s.locations.CreateRoom(r.Context(), room); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	s.recordAudit(r, "Created room: "+room.Name)
	writeJSON(w, http.StatusCreated, room)
}

func (s *Server) handleListRoomsByHome(w http.ResponseWriter, r *http.Request) {
	homeID, ok := pathID(w, r, "homeID")
	if !ok {
		return
	}

	rooms, err := s.locations.ListRoomsByHome(r.Context(), homeID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rooms)
}

func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	room, err := s.locations.GetRoom(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, room)
}
