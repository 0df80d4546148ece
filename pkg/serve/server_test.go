package serve

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jgbaldwinbrown/posbed/pkg/assembly"
	"github.com/jgbaldwinbrown/posbed/pkg/convert"
	"github.com/jgbaldwinbrown/posbed/pkg/liftover"
	"github.com/jgbaldwinbrown/posbed/pkg/position"
)

func runServer(t *testing.T, lifter liftover.Lifter, requests ...string) []Response {
	t.Helper()
	in := strings.NewReader(strings.Join(requests, "\n") + "\n")
	var out bytes.Buffer

	srv := NewServer(convert.New(lifter), convert.DefaultOptions(assembly.HG19, assembly.HG38), in, &out)
	require.NoError(t, srv.Run(context.Background()))

	var responses []Response
	s := bufio.NewScanner(&out)
	for s.Scan() {
		var resp Response
		require.NoError(t, json.Unmarshal(s.Bytes(), &resp))
		responses = append(responses, resp)
	}
	return responses
}

func shiftLifter(ctx context.Context, iv position.Interval, from, to assembly.ID) liftover.Result {
	return liftover.Mapped(position.Interval{Chrom: iv.Chrom, Start: iv.Start + 1, End: iv.End + 1})
}

func TestServer_Ready(t *testing.T) {
	responses := runServer(t, nil, `{"type":"close"}`)
	require.Len(t, responses, 1)
	assert.True(t, responses[0].Success)
	assert.Equal(t, "ready", responses[0].Type)

	var ready ReadyData
	require.NoError(t, json.Unmarshal(responses[0].Data, &ready))
	assert.Equal(t, Version, ready.Version)
}

func TestServer_Convert_NoLiftover(t *testing.T) {
	responses := runServer(t, nil,
		`{"type":"convert","payload":{"text":"chr1:1000000\nchr2:5000000-5001000\n3:1234567-1234890\n\nbadline","from":"hg19","to":"hg38","liftover":false}}`,
		`{"type":"close"}`,
	)
	require.Len(t, responses, 2)
	resp := responses[1]
	require.True(t, resp.Success, resp.Error)
	assert.Equal(t, "convert", resp.Type)

	var data struct {
		Report struct {
			BED           []string           `json:"bed"`
			ParseFailures []position.Failure `json:"parse_failures"`
		} `json:"report"`
		BED      string `json:"bed"`
		Filename string `json:"filename"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.Equal(t, "chr1\t1000000\t1000001\nchr2\t5000000\t5001000\nchr3\t1234567\t1234890", data.BED)
	assert.Len(t, data.Report.BED, 3)
	assert.Equal(t, []position.Failure{{Line: 5, Text: "badline"}}, data.Report.ParseFailures)
	assert.Equal(t, "coordinates_hg38.bed", data.Filename)
}

func TestServer_Convert_DefaultToggleLifts(t *testing.T) {
	responses := runServer(t, liftover.LifterFunc(shiftLifter),
		`{"type":"convert","payload":{"text":"chr1:10"}}`,
		`{"type":"convert","payload":{"text":"chr1:10","from":"hg38","to":"hg38"}}`,
	)
	require.Len(t, responses, 3)

	var lifted, same ConvertData
	require.NoError(t, json.Unmarshal(responses[1].Data, &lifted))
	require.NoError(t, json.Unmarshal(responses[2].Data, &same))
	assert.Equal(t, "chr1\t11\t12", lifted.BED)
	assert.Equal(t, "chr1\t10\t11", same.BED)
	assert.Equal(t, "coordinates_hg38.bed", same.Filename)
}

func TestServer_Errors(t *testing.T) {
	responses := runServer(t, nil,
		`{"type":"convert","payload":{"text":"chr1:1","from":"hg17"}}`,
		`{"type":"convert","payload":{"text":"chr1:1"}}`,
		`{"type":"bogus"}`,
		`{"type":"close"}`,
	)
	require.Len(t, responses, 4)
	for _, resp := range responses[1:] {
		assert.False(t, resp.Success)
		assert.NotEmpty(t, resp.Error)
	}
	assert.Equal(t, "convert", responses[1].Type)
	assert.Contains(t, responses[2].Error, "without a liftover client")
	assert.Equal(t, "unknown", responses[3].Type)
}

func TestServer_Assemblies(t *testing.T) {
	responses := runServer(t, nil, `{"type":"assemblies"}`)
	require.Len(t, responses, 2)
	var data []AssemblyData
	require.NoError(t, json.Unmarshal(responses[1].Data, &data))
	assert.Equal(t, []AssemblyData{
		{Name: "hg19", Service: "GRCh37"},
		{Name: "hg38", Service: "GRCh38"},
	}, data)
}

func TestServer_DecodeError(t *testing.T) {
	responses := runServer(t, nil, `{not json`)
	require.Len(t, responses, 2)
	assert.False(t, responses[1].Success)
	assert.Equal(t, "decode", responses[1].Type)
}
