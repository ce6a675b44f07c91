package api

import (
	"fmt"
	"net/http"

	"github.com/nerrad567/smarthome-core/internal/device"
	"github.com/nerrad567/smarthome-core/internal/infrastructure/validation"
)

type createDeviceRequest struct {
	HomeID int64             `json:"home_id"`
	Type   device.DeviceType `json:"type"`
	Name   string            `json:"name"`
	Status *string           `json:"status"`
}

type updateStatusRequest struct {
	Status *string `json:"status"`
}

func (s *Server) handleCreateDevice(w http.ResponseWriter, r *http.Request) {
	var req createDeviceRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	d := &device.Device{HomeID: req.HomeID, Type: req.Type, Name: req.Name}
	if req.Status != nil {
		d.Status = *req.Status
	}
	fields := validation.Fields(device.ValidateDevice(d))
	if req.Status == nil {
		if fields == nil {
			fields = map[string]string{}
		}
		fields["status"] = "field required"
	}
	if len(fields) > 0 {
		writeValidation(w, fields)
		return
	}

	if err := s.devices.CreateDevice(r.Context(), d); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	s.recordAudit(r, "Created device: "+d.Name)
	writeJSON(w, http.StatusCreated, d)
}

func (s *Server) handleListDevicesByHome(w http.ResponseWriter, r *http.Request) {
	homeID, ok := pathID(w, r, "homeID")
	if !ok {
		return
	}

	devices, err := s.devices.ListDevicesByHome(r.Context(), homeID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, devices)
}

func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	d, err := s.devices.GetDevice(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleUpdateDeviceStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req updateStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := device.ValidateStatus(req.Status); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	d, err := s.devices.UpdateDeviceStatus(r.Context(), id, *req.Status)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	s.recordAudit(r, fmt.Sprintf("Updated device %d status to %s", id, *req.Status))
	s.notifier.DeviceStatusChanged(r.Context(), d)
	writeJSON(w, http.StatusOK, d)
}

type createSensorRequest struct {
	DeviceID int64             `json:"device_id"`
	Type     device.SensorType `json:"type"`
	Value    *string           `json:"value"`
}

type updateValueRequest struct {
	Value *string `json:"value"`
}

func (s *Server) handleCreateSensor(w http.ResponseWriter, r *http.Request) {
	var req createSensorRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	sn := &device.Sensor{DeviceID: req.DeviceID, Type: req.Type, Value: req.Value}
	if err := device.ValidateSensor(sn); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	if err := s.devices.CreateSensor(r.Context(), sn); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	s.recordAudit(r, "Created sensor: "+string(sn.Type))
	writeJSON(w, http.StatusCreated, sn)
}

func (s *Server) handleListSensorsByDevice(w http.ResponseWriter, r *http.Request) {
	deviceID, ok := pathID(w, r, "deviceID")
	if !ok {
		return
	}

	sensors, err := s.devices.ListSensorsByDevice(r.Context(), deviceID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sensors)
}

func (s *Server) handleGetSensor(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	sn, err := s.devices.GetSensor(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sn)
}

func (s *Server) handleUpdateSensorValue(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req updateValueRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := device.ValidateSensorValue(req.Value); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	sn, err := s.devices.UpdateSensorValue(r.Context(), id, *req.Value)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	s.recordAudit(r, fmt.Sprintf("Updated sensor %d value to %s", id, *req.Value))
	s.notifier.SensorValueChanged(r.Context(), sn)
	writeJSON(w, http.StatusOK, sn)
}

type createEventRequest struct {
	DeviceID  int64   `json:"device_id"`
	EventType string  `json:"event_type"`
	Value     *string `json:"value"`
}

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var req createEventRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ev := &device.Event{DeviceID: req.DeviceID, EventType: req.EventType, Value: req.Value}
	if err := device.ValidateEvent(ev); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	if err := s.devices.CreateEvent(r.Context(), ev); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	s.recordAudit(r, "Event triggered: "+ev.EventType)
	s.notifier.EventRecorded(r.Context(), ev)
	writeJSON(w, http.StatusCreated, ev)
}

func (s *Server) handleListEventsByDevice(w http.ResponseWriter, r *http.Request) {
	deviceID, ok := pathID(w, r, "deviceID")
	if !ok {
		return
	}

	events, err := s.devices.ListEventsByDevice(r.Context(), deviceID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (s *Server) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	ev, err := s.devices.GetEvent(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ev)
}
