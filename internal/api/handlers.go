package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"ContentStudio/internal/domain"
	"ContentStudio/internal/usecase"
)

const maxUploadBytes = 32 << 20

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		if err := s.health(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleOnboard(w http.ResponseWriter, r *http.Request) {
	var req onboardRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, err)
		return
	}

	client, err := s.wf.Onboard(r.Context(), usecase.OnboardInput{
		OwnerID:         req.OwnerID,
		Name:            req.Name,
		LinkedInURL:     req.LinkedInURL,
		Bio:             req.Bio,
		Goals:           req.Goals,
		TonePreferences: req.TonePreferences,
		Industry:        req.Industry,
		Role:            req.Role,
		TargetAudience:  req.TargetAudience,
		CompanyName:     req.CompanyName,
		ApprovalEmail:   req.ApprovalEmail,
	})
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newClientView(client))
}

func (s *Server) handleGetClient(w http.ResponseWriter, r *http.Request) {
	client, err := s.wf.GetClient(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newClientView(client))
}

func (s *Server) handleDeleteClient(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.wf.DeleteClient(r.Context(), id); err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": true, "id": id})
}

func (s *Server) handleCreateAudit(w http.ResponseWriter, r *http.Request) {
	res, err := s.wf.CreateAudit(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, err)
		return
	}
	status := http.StatusCreated
	if res.Cached {
		status = http.StatusOK
	}
	writeJSON(w, status, newAuditView(res))
}

func (s *Server) handleCreateCalendar(w http.ResponseWriter, r *http.Request) {
	res, err := s.wf.CreateCalendar(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, err)
		return
	}
	status := http.StatusCreated
	if res.Cached {
		status = http.StatusOK
	}
	writeJSON(w, status, map[string]any{"items": newItemViews(res.Items), "cached": res.Cached})
}

func (s *Server) handleListCalendar(w http.ResponseWriter, r *http.Request) {
	items, err := s.wf.ListCalendar(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": newItemViews(items)})
}

func (s *Server) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var req newItemRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, err)
		return
	}
	in := usecase.NewItemInput{Title: req.Title, Brief: req.Brief, Format: req.Format, Pillar: req.Pillar, Time: req.Time}
	if req.Date != "" {
		in.Date, _ = time.Parse(dateLayout, req.Date)
	}

	item, err := s.wf.AddCalendarItem(r.Context(), mux.Vars(r)["id"], in)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newItemView(item))
}

func (s *Server) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, err)
		return
	}
	item, err := s.wf.UpdateItemStatus(r.Context(), mux.Vars(r)["id"], domain.Status(req.Status))
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newItemView(item))
}

func (s *Server) handleReviseItem(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, err)
		return
	}
	res, err := s.wf.ReviseCalendarItem(r.Context(), mux.Vars(r)["id"], req.Feedback)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"item": newItemView(res.Item), "effects": newEffectsView(res.Effects)})
}

func (s *Server) handleListVersions(w http.ResponseWriter, r *http.Request) {
	versions, err := s.wf.ListCalendarVersions(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, err)
		return
	}
	out := make([]versionView, 0, len(versions))
	for _, v := range versions {
		out = append(out, versionView{
			ID:           v.ID,
			CalendarID:   v.CalendarID,
			Content:      newContentView(v.Content),
			FeedbackUsed: v.FeedbackUsed,
			CreatedAt:    v.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"versions": out})
}

func (s *Server) handleListFeedback(w http.ResponseWriter, r *http.Request) {
	entries, err := s.wf.ListFeedback(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, err)
		return
	}
	type entryView struct {
		ID        string    `json:"id"`
		Content   string    `json:"content"`
		CreatedAt time.Time `json:"created_at"`
	}
	out := make([]entryView, 0, len(entries))
	for _, e := range entries {
		out = append(out, entryView{ID: e.ID, Content: e.Content, CreatedAt: e.CreatedAt})
	}
	writeJSON(w, http.StatusOK, map[string]any{"feedback": out})
}

func (s *Server) handleGenerateScript(w http.ResponseWriter, r *http.Request) {
	script, err := s.wf.GenerateScript(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newScriptView(script))
}

func (s *Server) handleSaveManualScript(w http.ResponseWriter, r *http.Request) {
	var req manualScriptRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, err)
		return
	}
	script, err := s.wf.SaveManualScript(r.Context(), mux.Vars(r)["id"], req.ContentText)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newScriptView(script))
}

func (s *Server) handleGetScript(w http.ResponseWriter, r *http.Request) {
	script, err := s.wf.GetScriptForItem(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newScriptView(script))
}

func (s *Server) handleAttachMedia(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.fail(w, &domain.ValidationError{Field: "file", Reason: err.Error()})
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		s.fail(w, &domain.ValidationError{Field: "file", Reason: "is required"})
		return
	}
	defer file.Close()

	item, err := s.wf.AttachMedia(r.Context(), mux.Vars(r)["id"], usecase.MediaUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
		Caption:     r.FormValue("caption"),
	})
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newItemView(item))
}

func (s *Server) handleSendForApproval(w http.ResponseWriter, r *http.Request) {
	var req sendApprovalRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, err)
		return
	}
	dispatches, err := s.wf.SendForApproval(r.Context(), req.ItemIDs)
	if err != nil {
		s.fail(w, err)
		return
	}

	out := make([]dispatchView, 0, len(dispatches))
	sent := 0
	for _, d := range dispatches {
		v := dispatchView{ItemID: d.ItemID, Sent: d.Err == nil}
		if d.Err != nil {
			v.Error = d.Err.Error()
		} else {
			item := newItemView(d.Item)
			v.Item = &item
			sent++
		}
		out = append(out, v)
	}
	status := http.StatusOK
	if sent < len(out) {
		status = http.StatusMultiStatus
	}
	writeJSON(w, status, map[string]any{"results": out, "sent": sent})
}

func (s *Server) handleReviseScript(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, err)
		return
	}
	res, err := s.wf.ReviseScript(r.Context(), mux.Vars(r)["id"], req.Feedback)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"script": newScriptView(res.Script), "effects": newEffectsView(res.Effects)})
}

func (s *Server) handleApproveScript(w http.ResponseWriter, r *http.Request) {
	script, err := s.wf.ApproveScript(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newScriptView(script))
}

func (s *Server) handleListScriptVersions(w http.ResponseWriter, r *http.Request) {
	versions, err := s.wf.ListScriptVersions(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, err)
		return
	}
	out := make([]scriptVersionView, 0, len(versions))
	for _, v := range versions {
		out = append(out, scriptVersionView{
			ID:           v.ID,
			ScriptID:     v.ScriptID,
			ContentText:  v.Content.ContentText,
			Version:      v.Version,
			FeedbackUsed: v.FeedbackUsed,
			CreatedAt:    v.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"versions": out})
}

func (s *Server) handleSwitchTone(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	tone := domain.Tone(strings.ToLower(vars["tone"]))
	text, err := s.wf.SwitchTone(r.Context(), vars["id"], tone)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"tone": string(tone), "content_text": text})
}

func (s *Server) handleMediaURL(w http.ResponseWriter, r *http.Request) {
	url, err := s.wf.MediaURL(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

func (s *Server) handleListSchedules(w http.ResponseWriter, r *http.Request) {
	schedules, err := s.wf.ListSchedules(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, err)
		return
	}
	out := make([]scheduleView, 0, len(schedules))
	for _, sc := range schedules {
		out = append(out, newScheduleView(sc))
	}
	writeJSON(w, http.StatusOK, map[string]any{"schedules": out})
}

func (s *Server) handleSchedulePost(w http.ResponseWriter, r *http.Request) {
	var req scheduleRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, err)
		return
	}
	res, err := s.wf.SchedulePost(r.Context(), mux.Vars(r)["id"], req.ScheduledTime, req.Method)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"schedule": newScheduleView(res.Schedule),
		"script":   newScriptView(res.Script),
	})
}

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	owner := r.URL.Query().Get("owner")
	if owner == "" {
		s.fail(w, &domain.ValidationError{Field: "owner", Reason: "is required"})
		return
	}
	unread := r.URL.Query().Get("unread") == "true"

	list, err := s.wf.ListNotifications(r.Context(), owner, unread)
	if err != nil {
		s.fail(w, err)
		return
	}
	out := make([]notificationView, 0, len(list))
	for _, n := range list {
		out = append(out, notificationView{
			ID:         n.ID,
			ClientID:   n.ClientID,
			CalendarID: n.CalendarID,
			Kind:       string(n.Kind),
			Message:    n.Message,
			Read:       n.Read,
			CreatedAt:  n.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"notifications": out})
}

func (s *Server) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	if err := s.wf.MarkNotificationRead(r.Context(), mux.Vars(r)["id"]); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAssistBrief(w http.ResponseWriter, r *http.Request) {
	var req assistRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, err)
		return
	}
	sug, err := s.wf.AssistBrief(r.Context(), req.Topic, req.ClientID)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"title":  sug.Title,
		"brief":  sug.Brief,
		"format": string(sug.Format),
		"pillar": sug.Pillar,
	})
}

func (s *Server) handleApprovalPage(w http.ResponseWriter, r *http.Request) {
	view, err := s.wf.ViewApproval(r.Context(), mux.Vars(r)["token"])
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, approvalPageView{
		ItemID:      view.Item.ID,
		ClientName:  view.ClientName,
		Title:       view.Item.Title,
		Brief:       view.Item.Brief,
		Format:      string(view.Item.Format),
		Stage:       string(view.Item.Stage),
		Feedback:    string(view.Item.Feedback),
		ContentText: view.ContentText,
	})
}

// handleExternalDecision accepts a JSON body or a plain HTML form post.
func (s *Server) handleExternalDecision(w http.ResponseWriter, r *http.Request) {
	var req decisionRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
			s.fail(w, &domain.ValidationError{Reason: "invalid request body: " + err.Error()})
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			s.fail(w, &domain.ValidationError{Reason: err.Error()})
			return
		}
		req.Action = r.PostForm.Get("action")
		req.Feedback = r.PostForm.Get("feedback")
	}
	req.Action = strings.ToLower(strings.TrimSpace(req.Action))
	if err := check(&req); err != nil {
		s.fail(w, err)
		return
	}

	action, err := usecase.ParseClientAction(req.Action)
	if err != nil {
		s.fail(w, err)
		return
	}
	res, err := s.wf.DecideByToken(r.Context(), mux.Vars(r)["token"], action, req.Feedback)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"item":           newItemView(res.Item),
		"approved_stage": string(res.ApprovedStage),
		"effects":        newEffectsView(res.Effects),
	})
}
