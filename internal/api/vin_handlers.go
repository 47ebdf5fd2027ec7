package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/partlogicapp/partlogic-server/internal/vin"
)

func (s *Server) registerVINRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "decodeVIN",
		Method:      http.MethodGet,
		Path:        "/api/v1/vin/{vin}",
		Summary:     "Decode a VIN",
		Description: "Decodes a 17-character VIN into year, make, model, and engine details.",
		Tags:        []string{"VIN"},
	}, s.handleDecodeVIN)
}

type decodeVINInput struct {
	VIN string `path:"vin" minLength:"17" maxLength:"17" doc:"17-character vehicle identification number"`
}

type decodeVINOutput struct {
	Body vin.Result
}

func (s *Server) handleDecodeVIN(ctx context.Context, input *decodeVINInput) (*decodeVINOutput, error) {
	result, err := s.vinDecoder.Decode(ctx, input.VIN)
	if err != nil {
		return nil, err
	}
	return &decodeVINOutput{Body: *result}, nil
}
