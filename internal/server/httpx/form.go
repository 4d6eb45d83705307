package httpx

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/emphub/internal/server/models"
)

var errBadField = errors.New("bad field")

// employeeFormFields are the only keys read from a create or update body.
var employeeFormFields = []string{
	"first_name", "last_name", "email", "position",
	"salary", "date_of_joining", "department", "profile_image",
}

// employeeValues reads the allow-listed fields from a JSON, urlencoded or
// multipart body. A key is present in the result when the client sent it.
func employeeValues(r *http.Request) (map[string]string, error) {
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mt == "application/json" {
		return jsonEmployeeValues(r)
	}

	if r.MultipartForm == nil {
		if err := r.ParseForm(); err != nil {
			return nil, err
		}
	}

	out := make(map[string]string)
	for _, key := range employeeFormFields {
		if v, ok := r.PostForm[key]; ok && len(v) > 0 {
			out[key] = v[0]
		}
	}
	return out, nil
}

func jsonEmployeeValues(r *http.Request) (map[string]string, error) {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		return nil, err
	}

	out := make(map[string]string)
	for _, key := range employeeFormFields {
		v, ok := raw[key]
		if !ok || bytes.Equal(v, []byte("null")) {
			continue
		}
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			out[key] = s
			continue
		}
		// salary may come as a JSON number
		if key == "salary" {
			var n json.Number
			if err := json.Unmarshal(v, &n); err == nil {
				out[key] = n.String()
				continue
			}
		}
		return nil, fmt.Errorf("%w: %s", errBadField, key)
	}
	return out, nil
}

// toEmployeeFields converts raw values. Empty salary and date values count as
// not supplied; anything else that does not parse is an input error.
func toEmployeeFields(values map[string]string) (models.EmployeeFields, error) {
	var f models.EmployeeFields

	str := func(key string) *string {
		if v, ok := values[key]; ok {
			return &v
		}
		return nil
	}
	f.FirstName = str("first_name")
	f.LastName = str("last_name")
	f.Email = str("email")
	f.Position = str("position")
	f.Department = str("department")
	f.ProfileImage = str("profile_image")

	if v := strings.TrimSpace(values["salary"]); v != "" {
		salary, err := strconv.ParseFloat(v, 64)
		if err != nil || math.IsNaN(salary) || math.IsInf(salary, 0) {
			return f, fmt.Errorf("%w: salary", errBadField)
		}
		f.Salary = &salary
	}

	if v := strings.TrimSpace(values["date_of_joining"]); v != "" {
		d, err := parseDate(v)
		if err != nil {
			return f, fmt.Errorf("%w: date_of_joining", errBadField)
		}
		f.DateOfJoining = &d
	}

	return f, nil
}

func parseDate(v string) (time.Time, error) {
	if d, err := time.Parse(time.DateOnly, v); err == nil {
		return d, nil
	}
	return time.Parse(time.RFC3339, v)
}
