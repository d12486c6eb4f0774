package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/pupbiscuit/skydash/internal/analytics"
	"github.com/pupbiscuit/skydash/internal/domain"
)

// chartResponse runs an analytics projection against the current snapshot
// and writes the result. Input-shape violations surface as 422 so the
// front-end renders "data unavailable" instead of a wrong chart; degenerate
// data (empty feed, zero denominators) comes back as a 200 with empty or
// zero-filled series.
func (s *Server) chartResponse(w http.ResponseWriter, r *http.Request, project func(*domain.Snapshot) (any, error)) {
	snap, err := s.snapshots.Snapshot(r.Context())
	if err != nil {
		s.logger.Error("snapshot unavailable", "error", err)
		writeError(w, http.StatusBadGateway, "SnapshotUnavailable", "failed to fetch account data")
		return
	}

	result, err := project(snap)
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			s.logger.Error("rejected malformed analytics batch", "error", verr)
			writeError(w, http.StatusUnprocessableEntity, "DataUnavailable", verr.Error())
			return
		}
		s.logger.Error("analytics projection failed", "error", err)
		writeError(w, http.StatusInternalServerError, "InternalError", "failed to compute chart")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func granularityParam(r *http.Request) analytics.Granularity {
	return analytics.ParseGranularity(r.URL.Query().Get("granularity"))
}

func reducerParam(r *http.Request) analytics.Reducer {
	switch analytics.Reducer(r.URL.Query().Get("reducer")) {
	case analytics.Mean:
		return analytics.Mean
	case analytics.Count:
		return analytics.Count
	default:
		return analytics.Sum
	}
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	s.chartResponse(w, r, func(snap *domain.Snapshot) (any, error) {
		// Scored as of the snapshot fetch so a cached snapshot reports a
		// stable number.
		return map[string]any{
			"profile":         snap.Profile,
			"engagementScore": analytics.EngagementScore(snap.Events, snap.Profile.FollowersCount, snap.FetchedAt),
		}, nil
	})
}

func (s *Server) handleLikesChart(w http.ResponseWriter, r *http.Request) {
	g, reducer := granularityParam(r), reducerParam(r)
	s.chartResponse(w, r, func(snap *domain.Snapshot) (any, error) {
		return analytics.Aggregate(snap.EventsOfType(domain.EventPost), analytics.ColLikes, reducer, g)
	})
}

func (s *Server) handleEngagementChart(w http.ResponseWriter, r *http.Request) {
	g, reducer := granularityParam(r), reducerParam(r)
	s.chartResponse(w, r, func(snap *domain.Snapshot) (any, error) {
		return analytics.StackedAggregate(snap.EventsOfType(domain.EventPost), reducer, g)
	})
}

func (s *Server) handleEmbedTypesChart(w http.ResponseWriter, r *http.Request) {
	g, reducer := granularityParam(r), reducerParam(r)
	s.chartResponse(w, r, func(snap *domain.Snapshot) (any, error) {
		return analytics.CategoricalAggregate(snap.EventsOfType(domain.EventPost), analytics.ColLikes, reducer, analytics.CategoryEmbedType, g)
	})
}

func (s *Server) handleRateChart(w http.ResponseWriter, r *http.Request) {
	g := granularityParam(r)
	s.chartResponse(w, r, func(snap *domain.Snapshot) (any, error) {
		return analytics.EngagementRateSeries(snap.Events, g)
	})
}

func (s *Server) handleHourOfWeekChart(w http.ResponseWriter, r *http.Request) {
	s.chartResponse(w, r, func(snap *domain.Snapshot) (any, error) {
		return analytics.HourOfWeekDistribution(snap.Events)
	})
}

func (s *Server) handleRetentionChart(w http.ResponseWriter, r *http.Request) {
	g := granularityParam(r)
	s.chartResponse(w, r, func(snap *domain.Snapshot) (any, error) {
		return analytics.RetentionCurves(snap.EventsOfType(domain.EventLike), g)
	})
}

func (s *Server) handleTopPosts(w http.ResponseWriter, r *http.Request) {
	s.chartResponse(w, r, func(snap *domain.Snapshot) (any, error) {
		handle := snap.Profile.Handle
		return map[string]any{
			"mostLiked":      analytics.MostLiked(snap.Feed, handle),
			"mostReplied":    analytics.MostReplied(snap.Feed, handle),
			"mostReposted":   analytics.MostReposted(snap.Feed, handle),
			"mostBookmarked": analytics.MostBookmarked(snap.Feed, handle),
			"topFollowers":   analytics.TopEngagingFollowers(snap.Events, 5),
		}, nil
	})
}

func (s *Server) handleScheduleList(w http.ResponseWriter, _ *http.Request) {
	items, err := s.queue.Load()
	if err != nil {
		s.logger.Error("failed to load schedule", "error", err)
		writeError(w, http.StatusInternalServerError, "InternalError", "failed to load schedule")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

// allowedUploadExts limits uploads to the image formats the publish
// pipeline can decode.
var allowedUploadExts = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".gif":  {},
}

func (s *Server) handleScheduleUpload(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "file field is required")
		return
	}
	defer file.Close()

	name := filepath.Base(header.Filename)
	ext := strings.ToLower(filepath.Ext(name))
	if _, ok := allowedUploadExts[ext]; !ok {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "unsupported file type")
		return
	}

	if err := os.MkdirAll(s.cfg.UploadDir, 0o755); err != nil {
		s.logger.Error("failed to create upload dir", "error", err)
		writeError(w, http.StatusInternalServerError, "InternalError", "failed to store upload")
		return
	}

	// A colliding filename would re-point an already queued item at the new
	// bytes, so suffix the name instead of overwriting.
	dest := filepath.Join(s.cfg.UploadDir, name)
	if _, err := os.Stat(dest); err == nil {
		base := strings.TrimSuffix(name, filepath.Ext(name))
		dest = filepath.Join(s.cfg.UploadDir, fmt.Sprintf("%s-%s%s", base, uuid.NewString(), ext))
	}
	out, err := os.Create(dest)
	if err != nil {
		s.logger.Error("failed to create upload file", "path", dest, "error", err)
		writeError(w, http.StatusInternalServerError, "InternalError", "failed to store upload")
		return
	}
	defer out.Close()
	if _, err := io.Copy(out, file); err != nil {
		s.logger.Error("failed to write upload", "path", dest, "error", err)
		writeError(w, http.StatusInternalServerError, "InternalError", "failed to store upload")
		return
	}

	item, err := s.queue.Add(dest, r.FormValue("text"))
	if err != nil {
		s.logger.Error("failed to add schedule item", "error", err)
		writeError(w, http.StatusInternalServerError, "InternalError", "failed to update schedule")
		return
	}

	s.logger.Info("scheduled new post", "id", item.ID, "path", dest, "date", item.Date)
	writeJSON(w, http.StatusCreated, item)
}

func (s *Server) handleScheduleReorder(w http.ResponseWriter, r *http.Request) {
	var body struct {
		IDs []string `json:"ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "body must be {\"ids\": [...]}")
		return
	}

	if err := s.queue.Reorder(body.IDs); err != nil {
		s.logger.Error("failed to reorder schedule", "error", err)
		writeError(w, http.StatusInternalServerError, "InternalError", "failed to reorder schedule")
		return
	}
	s.handleScheduleList(w, r)
}

func (s *Server) handleScheduleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "id is required")
		return
	}

	if err := s.queue.Remove(id); err != nil {
		s.logger.Error("failed to remove schedule item", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "InternalError", "failed to update schedule")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}
