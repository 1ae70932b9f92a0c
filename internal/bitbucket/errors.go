package bitbucket

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

// Error is a single error reported by Bitbucket Server.
//
// Bitbucket reports failures as a JSON envelope:
//
//	{"errors": [{"context": null, "message": "...", "exceptionName": "..."}]}
type Error struct {
	// Context names the field or entity the error is about, if any.
	Context string `json:"context,omitempty"`

	// Message is the human readable error message.
	Message string `json:"message"`

	// ExceptionName is the fully qualified name of the server-side exception.
	ExceptionName string `json:"exceptionName,omitempty"`
}

func (e Error) String() string {
	if e.Context != "" {
		return e.Context + ": " + e.Message
	}
	return e.Message
}

// ErrorList is a list of errors reported by Bitbucket Server.
//
// Every response entity carries an ErrorList.
// An empty list means the operation succeeded.
type ErrorList []Error

func (l ErrorList) Error() string {
	switch len(l) {
	case 0:
		return "no errors"
	case 1:
		return l[0].String()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d errors:", len(l))
	for _, e := range l {
		sb.WriteString("\n  - ")
		sb.WriteString(e.String())
	}
	return sb.String()
}

// Err returns the list as an error, or nil if the list is empty.
func (l ErrorList) Err() error {
	if len(l) == 0 {
		return nil
	}
	return l
}

// HasException reports whether any error in the list
// was raised by an exception with the given simple or qualified name.
func (l ErrorList) HasException(name string) bool {
	for _, e := range l {
		if e.ExceptionName == name || strings.HasSuffix(e.ExceptionName, "."+name) {
			return true
		}
	}
	return false
}

// parseErrors extracts errors from the body of a failed response.
//
// The errors envelope is preferred.
// A bare {"message": ...} object is accepted as a single error.
// Anything else yields a single error describing the status code.
func parseErrors(statusCode int, body []byte) ErrorList {
	var errs ErrorList
	if gjson.ValidBytes(body) {
		res := gjson.ParseBytes(body)
		res.Get("errors").ForEach(func(_, e gjson.Result) bool {
			errs = append(errs, Error{
				Context:       e.Get("context").String(),
				Message:       e.Get("message").String(),
				ExceptionName: e.Get("exceptionName").String(),
			})
			return true
		})

		if len(errs) == 0 {
			if msg := res.Get("message"); msg.Exists() {
				errs = append(errs, Error{Message: msg.String()})
			}
		}
	}

	if len(errs) == 0 {
		errs = append(errs, Error{
			Message: fmt.Sprintf("%d %s", statusCode, http.StatusText(statusCode)),
		})
	}
	return errs
}
