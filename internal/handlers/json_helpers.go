package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"time"

	"qa-forum/internal/apperror"
	"qa-forum/internal/service"
)

var timeType = reflect.TypeOf(time.Time{})

// normalizeSlices recursively ensures all nil slices become empty slices
func normalizeSlices(data any) any {
	if data == nil {
		return data
	}

	v := reflect.ValueOf(data)

	switch v.Kind() {
	case reflect.Ptr:
		if v.IsNil() || v.Elem().Type() == timeType {
			return data
		}
		elem := v.Elem()
		result := reflect.New(elem.Type())
		result.Elem().Set(reflect.ValueOf(normalizeSlices(elem.Interface())))
		return result.Interface()

	case reflect.Slice:
		if v.IsNil() {
			return reflect.MakeSlice(v.Type(), 0, 0).Interface()
		}
		result := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		for i := 0; i < v.Len(); i++ {
			setNormalized(result.Index(i), v.Index(i))
		}
		return result.Interface()

	case reflect.Map:
		if v.IsNil() {
			return data
		}
		result := reflect.MakeMapWithSize(v.Type(), v.Len())
		iter := v.MapRange()
		for iter.Next() {
			val := reflect.New(v.Type().Elem()).Elem()
			setNormalized(val, iter.Value())
			result.SetMapIndex(iter.Key(), val)
		}
		return result.Interface()

	case reflect.Struct:
		if v.Type() == timeType {
			return data
		}
		result := reflect.New(v.Type()).Elem()
		for i := 0; i < v.NumField(); i++ {
			field := v.Field(i)
			if !v.Type().Field(i).IsExported() {
				continue
			}
			setNormalized(result.Field(i), field)
		}
		return result.Interface()
	}

	return data
}

// setNormalized stores the normalized form of src in dst, keeping dst's static type
func setNormalized(dst, src reflect.Value) {
	switch src.Kind() {
	case reflect.Slice, reflect.Ptr, reflect.Struct, reflect.Map:
		normalized := normalizeSlices(src.Interface())
		dst.Set(reflect.ValueOf(normalized))
	case reflect.Interface:
		if src.IsNil() {
			return
		}
		dst.Set(reflect.ValueOf(normalizeSlices(src.Interface())))
	default:
		dst.Set(src)
	}
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(normalizeSlices(payload)); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

// respondWithServiceError maps a service error onto an HTTP status
func respondWithServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		respondWithError(w, http.StatusUnauthorized, ErrMsgInvalidCredentials)
	case errors.Is(err, apperror.ErrPersistenceUnavailable):
		respondWithError(w, http.StatusServiceUnavailable, ErrMsgServiceUnavailable)
	case errors.Is(err, apperror.ErrNotFound):
		respondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, apperror.ErrPermissionDenied):
		respondWithError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, apperror.ErrInvariantViolation),
		errors.Is(err, apperror.ErrDuplicateRequest),
		errors.Is(err, apperror.ErrConflict):
		respondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, apperror.ErrInvalidArgument):
		respondWithError(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error("Unhandled service error", "error", err)
		respondWithError(w, http.StatusInternalServerError, ErrMsgInternalServer)
	}
}

// pathID parses a positive numeric path value
func pathID(r *http.Request, name string) (uint, bool) {
	id, err := strconv.ParseUint(r.PathValue(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
