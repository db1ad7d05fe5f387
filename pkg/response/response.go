package response

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

type Response struct {
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message"`
	Details []any  `json:"details,omitempty"`
	Data    any    `json:"data,omitempty"`
}

var EmptyRequestBodyResponse = Response{
	Status:  StatusError,
	Error:   "Empty Request Body",
	Message: "Request body is empty. Please provide necessary data.",
}

var BadRequestResponse = Response{
	Status:  StatusError,
	Error:   "Bad Request",
	Message: "The request could not be processed. Please check the request data.",
}

var ResourceNotFoundResponse = Response{
	Status:  StatusError,
	Error:   "Resource Not Found",
	Message: "The requested resource was not found.",
}

var LinkGoneResponse = Response{
	Status:  StatusError,
	Error:   "Link Gone",
	Message: "The link has been deactivated or has expired.",
}

var ShortCodeConflictResponse = Response{
	Status:  StatusError,
	Error:   "Short Code Conflict",
	Message: "The generated short code is already taken. Please try again.",
}

var GenerationExhaustedResponse = Response{
	Status:  StatusError,
	Error:   "Code Generation Exhausted",
	Message: "A unique short code could not be generated. Please try again later.",
}

var EmailExistsResponse = Response{
	Status:  StatusError,
	Error:   "Email Exists",
	Message: "A user with this email is already registered.",
}

var InvalidCredentialsResponse = Response{
	Status:  StatusError,
	Error:   "Invalid Credentials",
	Message: "The email or password is incorrect.",
}

var UnauthorizedResponse = Response{
	Status:  StatusError,
	Error:   "Unauthorized",
	Message: "A valid bearer token is required to access this resource.",
}

var ServerErrorResponse = Response{
	Status:  StatusError,
	Error:   "Server Error",
	Message: "An internal server error occurred. Please try again later.",
}

func SuccessResponse(msg string, data ...any) Response {
	resp := Response{
		Status:  StatusSuccess,
		Message: msg,
	}

	if len(data) > 0 {
		resp.Data = data[0]
	}

	return resp
}

func ValidationErrorResponse(err error) Response {
	resp := Response{
		Status:  StatusError,
		Error:   "Validation Error",
		Message: "The request contains invalid data.",
	}

	var vErrs validator.ValidationErrors
	if errors.As(err, &vErrs) {
		for _, vErr := range vErrs {
			resp.Details = append(resp.Details,
				fmt.Sprintf("field %q failed on the %q rule", vErr.Field(), vErr.Tag()))
		}
	}

	return resp
}
