// Package helpers provides HTTP test utilities.
//
// # Tokens
//
//	jh := helpers.NewJWTHelper(t)
//	token := jh.GenerateToken(t, student)
//
// # Requests and assertions
//
//	req := helpers.NewRequest(t, "POST", "/v1/events/event:1/register").WithToken(token).Build()
//	helpers.AssertProblemDetails(t, rec, http.StatusBadRequest, model.ErrCodeEventFull)
//	helpers.AssertValidationError(t, rec, "achiever.type")
package helpers
