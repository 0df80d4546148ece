// Package serve exposes conversion as a long-lived NDJSON loop over a
// reader/writer pair, one request per line.
package serve

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/jgbaldwinbrown/posbed/pkg/assembly"
	"github.com/jgbaldwinbrown/posbed/pkg/convert"
	"github.com/jgbaldwinbrown/posbed/pkg/logging"
	"github.com/jgbaldwinbrown/posbed/pkg/report"
)

// Version is the server protocol version
const Version = "1.0.0"

// Server handles requests strictly one at a time.
type Server struct {
	conv     *convert.Converter
	defaults convert.Options
	encoder  *json.Encoder
	decoder  *json.Decoder
}

// NewServer creates a server. defaults apply to requests that name no
// assembly; a request naming either one gets the liftover toggle reset to
// From != To unless it sets it explicitly.
func NewServer(conv *convert.Converter, defaults convert.Options, in io.Reader, out io.Writer) *Server {
	return &Server{
		conv:     conv,
		defaults: defaults,
		encoder:  json.NewEncoder(out),
		decoder:  json.NewDecoder(bufio.NewReader(in)),
	}
}

// Run starts the server main loop
func (s *Server) Run(ctx context.Context) error {
	s.sendReady()

	reqChan := make(chan Request, 1)
	errChan := make(chan error, 1)

	go func() {
		for {
			var req Request
			if err := s.decoder.Decode(&req); err != nil {
				errChan <- err
				return
			}
			select {
			case reqChan <- req:
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-errChan:
			for {
				select {
				case req := <-reqChan:
					if s.processRequest(ctx, req) {
						return nil
					}
				default:
					if err == io.EOF {
						return nil
					}
					s.sendError("decode", err.Error())
					return nil
				}
			}
		case req := <-reqChan:
			if s.processRequest(ctx, req) {
				return nil
			}
		}
	}
}

// processRequest handles a single request and returns true if the server should exit
func (s *Server) processRequest(ctx context.Context, req Request) bool {
	switch req.Type {
	case "convert":
		s.handleConvert(ctx, req.Payload)
	case "assemblies":
		s.handleAssemblies()
	case "close":
		return true
	default:
		s.sendError("unknown", "unknown request type: "+req.Type)
	}
	return false
}

func (s *Server) sendReady() {
	s.send("ready", ReadyData{Version: Version})
}

func (s *Server) handleConvert(ctx context.Context, payload json.RawMessage) {
	var p ConvertPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		s.sendError("convert", err.Error())
		return
	}

	opts := s.defaults
	if p.From != "" || p.To != "" {
		if p.From != "" {
			opts.From = p.From
		}
		if p.To != "" {
			opts.To = p.To
		}
		opts.Liftover = opts.From != opts.To
	}
	if p.Liftover != nil {
		opts.Liftover = *p.Liftover
	}

	rep, err := s.conv.RunText(ctx, p.Text, opts)
	if err != nil {
		logging.WarnContext(ctx, "convert_request_failed", "error", err.Error())
		s.sendError("convert", err.Error())
		return
	}

	s.send("convert", ConvertData{
		Report:   report.JSON(rep, report.Settings{Reasons: p.Reasons}),
		BED:      rep.BED(),
		Filename: Filename(opts.To),
	})
}

func (s *Server) handleAssemblies() {
	data := make([]AssemblyData, 0, len(assembly.All))
	for _, id := range assembly.All {
		data = append(data, AssemblyData{Name: id.String(), Service: id.GRC()})
	}
	s.send("assemblies", data)
}

// Filename is the suggested download name for BED output.
func Filename(to assembly.ID) string {
	return fmt.Sprintf("coordinates_%s.bed", to)
}

func (s *Server) send(typ string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.sendError(typ, err.Error())
		return
	}
	s.encoder.Encode(Response{
		Success: true,
		Type:    typ,
		Data:    data,
	})
}

func (s *Server) sendError(reqType, msg string) {
	s.encoder.Encode(Response{
		Success: false,
		Type:    reqType,
		Error:   msg,
	})
}
