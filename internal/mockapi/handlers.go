package mockapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/fjod/matule/internal/network"
	"github.com/go-chi/chi/v5"
)

const (
	maxUploadSize = 10 << 20

	msgCreateFailed = "Failed to create record."
	msgUpdateFailed = "Failed to update record."
	msgNotFound     = "The requested resource wasn't found."
	msgForbidden    = "The authorized record is not allowed to perform this action."
	msgBadRequest   = "Something went wrong while processing your request."
)

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req network.RequestRegister
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, msgBadRequest, nil)
		return
	}

	switch {
	case !strings.Contains(req.Email, "@"):
		s.respondError(w, http.StatusBadRequest, msgCreateFailed,
			fieldError("email", "validation_is_email", "Must be a valid email address."))
		return
	case len(req.Password) < 8:
		s.respondError(w, http.StatusBadRequest, msgCreateFailed,
			fieldError("password", "validation_min_text_constraint", "Must be at least 8 character(s)."))
		return
	case req.Password != req.PasswordConfirm:
		s.respondError(w, http.StatusBadRequest, msgCreateFailed,
			fieldError("passwordConfirm", "validation_values_mismatch", "Values don't match."))
		return
	}

	user, err := s.store.createUser(req.Email, req.Password)
	if errors.Is(err, ErrEmailTaken) {
		s.respondError(w, http.StatusBadRequest, msgCreateFailed,
			fieldError("email", "validation_not_unique", "Value must be unique."))
		return
	}
	s.log.WithField("user_id", user.ID).Info("User registered")
	s.respondJSON(w, http.StatusOK, user)
}

func (s *Server) authWithPassword(w http.ResponseWriter, r *http.Request) {
	var req network.RequestAuth
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, msgBadRequest, nil)
		return
	}

	user, origin, err := s.store.authenticate(req.Identity, req.Password)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "Failed to authenticate.", nil)
		return
	}
	token, err := s.issueToken(user.ID, origin.ID)
	if err != nil {
		s.log.WithError(err).Error("Failed to issue token")
		s.respondError(w, http.StatusInternalServerError, msgBadRequest, nil)
		return
	}
	s.respondJSON(w, http.StatusOK, network.ResponseAuth{Record: user, Token: token})
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.store.user(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusNotFound, msgNotFound, nil)
		return
	}
	s.respondJSON(w, http.StatusOK, user)
}

func (s *Server) updateUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id != userIDFromContext(r.Context()) {
		s.respondError(w, http.StatusForbidden, msgForbidden, nil)
		return
	}
	values, _, err := readForm(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, msgBadRequest, nil)
		return
	}

	user, err := s.store.updateUser(id, values)
	switch {
	case errors.Is(err, ErrNotFound):
		s.respondError(w, http.StatusNotFound, msgNotFound, nil)
	case errors.Is(err, ErrEmailTaken):
		s.respondError(w, http.StatusBadRequest, msgUpdateFailed,
			fieldError("email", "validation_not_unique", "Value must be unique."))
	default:
		s.respondJSON(w, http.StatusOK, user)
	}
}

func (s *Server) listAuthOrigins(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, paginate(r, s.store.originsOf(userIDFromContext(r.Context()))))
}

func (s *Server) deleteAuthOrigin(w http.ResponseWriter, r *http.Request) {
	err := s.store.deleteOrigin(chi.URLParam(r, "id"), userIDFromContext(r.Context()))
	switch {
	case errors.Is(err, ErrNotFound):
		s.respondError(w, http.StatusNotFound, msgNotFound, nil)
	case errors.Is(err, ErrForbidden):
		s.respondError(w, http.StatusForbidden, msgForbidden, nil)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) listNews(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, paginate(r, s.store.listNews()))
}

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	var match func(network.ProductAPI) bool
	if filter := r.URL.Query().Get("filter"); filter != "" {
		needle, err := parseTitleFilter(filter)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "Invalid filter parameters.", nil)
			return
		}
		needle = strings.ToLower(needle)
		match = func(p network.ProductAPI) bool {
			return strings.Contains(strings.ToLower(p.Title), needle)
		}
	}
	s.respondJSON(w, http.StatusOK, paginate(r, s.store.listProducts(match)))
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := s.store.product(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusNotFound, msgNotFound, nil)
		return
	}
	s.respondJSON(w, http.StatusOK, p)
}

func (s *Server) createCart(w http.ResponseWriter, r *http.Request) {
	var req network.RequestCart
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, msgBadRequest, nil)
		return
	}
	if !s.ownedBy(w, r, req.UserID) {
		return
	}
	if req.ProductID == "" || req.Count < 1 {
		s.respondError(w, http.StatusBadRequest, msgCreateFailed,
			fieldError("count", "validation_min_number_constraint", "Must be larger than 0."))
		return
	}
	s.respondJSON(w, http.StatusOK, s.store.createCart(req))
}

func (s *Server) updateCart(w http.ResponseWriter, r *http.Request) {
	values, _, err := readForm(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, msgBadRequest, nil)
		return
	}
	count, err := strconv.Atoi(values["count"])
	if err != nil || count < 0 {
		s.respondError(w, http.StatusBadRequest, msgUpdateFailed,
			fieldError("count", "validation_invalid_number", "Must be a valid number."))
		return
	}
	req := network.RequestCart{UserID: values["user_id"], ProductID: values["product_id"], Count: count}
	if !s.ownedBy(w, r, req.UserID) {
		return
	}

	cart, err := s.store.updateCart(chi.URLParam(r, "id"), req)
	switch {
	case errors.Is(err, ErrNotFound):
		s.respondError(w, http.StatusNotFound, msgNotFound, nil)
	case errors.Is(err, ErrForbidden):
		s.respondError(w, http.StatusForbidden, msgForbidden, nil)
	default:
		s.respondJSON(w, http.StatusOK, cart)
	}
}

func (s *Server) createOrder(w http.ResponseWriter, r *http.Request) {
	var req network.RequestOrder
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, msgBadRequest, nil)
		return
	}
	if !s.ownedBy(w, r, req.UserID) {
		return
	}
	if req.ProductID == "" || req.Count < 1 {
		s.respondError(w, http.StatusBadRequest, msgCreateFailed,
			fieldError("count", "validation_min_number_constraint", "Must be larger than 0."))
		return
	}
	s.respondJSON(w, http.StatusOK, s.store.createOrder(req))
}

func (s *Server) listProjects(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, paginate(r, s.store.projectsOf(userIDFromContext(r.Context()))))
}

func (s *Server) createProject(w http.ResponseWriter, r *http.Request) {
	values, image, err := readForm(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, msgBadRequest, nil)
		return
	}
	req := network.RequestProject{
		Title:             values["title"],
		TypeProject:       values["typeProject"],
		UserID:            values["user_id"],
		DateStart:         values["dateStart"],
		DateEnd:           values["dateEnd"],
		Gender:            values["gender"],
		DescriptionSource: values["description_source"],
		Category:          values["category"],
	}
	if !s.ownedBy(w, r, req.UserID) {
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		s.respondError(w, http.StatusBadRequest, msgCreateFailed,
			fieldError("title", "validation_required", "Cannot be blank."))
		return
	}
	s.respondJSON(w, http.StatusOK, s.store.createProject(req, image))
}

func (s *Server) getFile(w http.ResponseWriter, r *http.Request) {
	f, err := s.store.file(chi.URLParam(r, "collection"), chi.URLParam(r, "record"), chi.URLParam(r, "name"))
	if err != nil {
		s.respondError(w, http.StatusNotFound, msgNotFound, nil)
		return
	}
	if f.contentType != "" {
		w.Header().Set("Content-Type", f.contentType)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(f.data)
}

// ownedBy rejects writes on behalf of another user.
func (s *Server) ownedBy(w http.ResponseWriter, r *http.Request, userID string) bool {
	if userID != userIDFromContext(r.Context()) {
		s.respondError(w, http.StatusForbidden, msgForbidden, nil)
		return false
	}
	return true
}

// readForm reads a multipart or JSON body into flat string values. The
// "image" part of a multipart body is returned separately.
func readForm(r *http.Request) (map[string]string, *network.Image, error) {
	values := make(map[string]string)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			return nil, nil, err
		}
		for k, v := range r.MultipartForm.Value {
			if len(v) > 0 {
				values[k] = v[0]
			}
		}
		image, err := readImage(r)
		if err != nil {
			return nil, nil, err
		}
		return values, image, nil
	}

	var raw map[string]any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		return nil, nil, err
	}
	for k, v := range raw {
		switch t := v.(type) {
		case string:
			values[k] = t
		case float64:
			values[k] = strconv.FormatFloat(t, 'f', -1, 64)
		case bool:
			values[k] = strconv.FormatBool(t)
		}
	}
	return values, nil, nil
}

func readImage(r *http.Request) (*network.Image, error) {
	files := r.MultipartForm.File["image"]
	if len(files) == 0 {
		return nil, nil
	}
	fh := files[0]
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return &network.Image{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
