package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/deppfellow/tokenfarms-api/internal/errs"
	"github.com/labstack/echo/v4"
)

// boundBody is what bindBody learned about the request while filling payload.
type boundBody struct {
	// order lists the JSON names of payload's fields in declaration order.
	order []string
	// invalid holds fields whose value had the wrong JSON type. They are left unset.
	invalid map[string]errs.FieldError
	// null holds fields sent as an explicit null. They are bound to their zero value.
	null map[string]bool
}

// bindBody decodes a JSON object into payload one field at a time, so a value
// of the wrong type only fails its own field. Integer fields also accept a
// string of digits.
func bindBody(c echo.Context, payload any) (*boundBody, error) {
	v := reflect.ValueOf(payload)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Struct {
		return nil, fmt.Errorf("bind target must be a pointer to a struct, got %T", payload)
	}

	bound := &boundBody{
		invalid: map[string]errs.FieldError{},
		null:    map[string]bool{},
	}
	collectNames(v.Elem().Type(), &bound.order)

	req := c.Request()
	if req.Body == nil {
		return bound, nil
	}

	body, err := io.ReadAll(req.Body)
	if err != nil {
		var echoErr *echo.HTTPError
		if errors.As(err, &echoErr) {
			return nil, echoErr
		}
		return nil, errs.NewBadRequestError("Invalid request body", nil, nil)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return bound, nil
	}

	if !strings.HasPrefix(req.Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		return nil, echo.ErrUnsupportedMediaType
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, errs.NewBadRequestError("Invalid JSON body: expected an object", nil, nil)
	}

	bindFields(v.Elem(), raw, bound)

	return bound, nil
}

func collectNames(t reflect.Type, out *[]string) {
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.Anonymous && sf.Type.Kind() == reflect.Struct {
			collectNames(sf.Type, out)
			continue
		}
		if name := jsonName(sf); sf.IsExported() && name != "" {
			*out = append(*out, name)
		}
	}
}

func bindFields(v reflect.Value, raw map[string]json.RawMessage, bound *boundBody) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		fv := v.Field(i)

		if sf.Anonymous && sf.Type.Kind() == reflect.Struct {
			bindFields(fv, raw, bound)
			continue
		}

		name := jsonName(sf)
		if !sf.IsExported() || name == "" {
			continue
		}

		msg, ok := raw[name]
		if !ok {
			continue
		}

		if bytes.Equal(bytes.TrimSpace(msg), []byte("null")) {
			// null counts as sent: the zero value goes through the field's rules.
			bound.null[name] = true
			if fv.Kind() == reflect.Pointer {
				fv.Set(reflect.New(fv.Type().Elem()))
			} else {
				fv.SetZero()
			}
			continue
		}

		if err := decodeField(fv, msg); err != nil {
			var value any
			_ = json.Unmarshal(msg, &value)

			bound.invalid[name] = errs.FieldError{
				Type:     "field",
				Value:    value,
				Msg:      fmt.Sprintf("%s must be of type %s", label(name), typeName(fv.Type())),
				Path:     name,
				Location: errs.LocationBody,
			}
		}
	}
}

// decodeField sets fv from msg, or leaves it untouched and returns an error.
func decodeField(fv reflect.Value, msg json.RawMessage) error {
	base := fv.Type()
	if base.Kind() == reflect.Pointer {
		base = base.Elem()
	}

	target := reflect.New(base)

	if isInteger(base.Kind()) && len(msg) > 0 && msg[0] == '"' {
		var s string
		if err := json.Unmarshal(msg, &s); err != nil {
			return err
		}
		n, err := strconv.ParseInt(s, 10, base.Bits())
		if err != nil {
			return err
		}
		target.Elem().SetInt(n)
	} else if err := json.Unmarshal(msg, target.Interface()); err != nil {
		return err
	}

	if fv.Kind() == reflect.Pointer {
		fv.Set(target)
	} else {
		fv.Set(target.Elem())
	}
	return nil
}

func isInteger(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

// jsonName is the name a field is sent and reported under.
func jsonName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}

// mergeFieldErrors combines type failures with rule failures in field order.
// A field that failed on type is reported once, with the type message.
func (b *boundBody) mergeFieldErrors(ruleErrors []errs.FieldError) []errs.FieldError {
	byName := make(map[string]errs.FieldError, len(b.invalid)+len(ruleErrors))
	for name, fe := range b.invalid {
		byName[name] = fe
	}
	for _, fe := range ruleErrors {
		if _, seen := byName[fe.Path]; seen {
			continue
		}
		if b.null[fe.Path] {
			fe.Value = nil
		}
		byName[fe.Path] = fe
	}

	out := make([]errs.FieldError, 0, len(byName))
	for _, name := range b.order {
		if fe, ok := byName[name]; ok {
			out = append(out, fe)
			delete(byName, name)
		}
	}
	// Anything the declared order does not cover, e.g. nested struct fields.
	for _, fe := range ruleErrors {
		if _, ok := byName[fe.Path]; ok {
			out = append(out, fe)
			delete(byName, fe.Path)
		}
	}
	return out
}

// bodyError maps a failure to read or parse the body to a client error.
// Errors that already carry a status, such as the body limit, keep it.
func bodyError(err error) error {
	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		if echoErr.Code == http.StatusRequestEntityTooLarge || echoErr.Code == http.StatusUnsupportedMediaType {
			return echoErr
		}
		message := "Invalid request body"
		if msg, ok := echoErr.Message.(string); ok {
			message = msg
		}
		return errs.NewBadRequestError(message, nil, nil)
	}

	return err
}
