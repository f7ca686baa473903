package ai

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeStrict(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		input   string
		want    verdict
		wantErr bool
	}{
		{name: "plain object", input: `{"answer":"a","score":1}`, want: verdict{Answer: "a", Score: 1}},
		{name: "surrounding whitespace", input: "\n  {\"answer\":\"b\",\"score\":2}\n\t", want: verdict{Answer: "b", Score: 2}},
		{name: "markdown fence", input: "```json\n{\"answer\":\"a\",\"score\":1}\n```", wantErr: true},
		{name: "trailing prose", input: `{"answer":"a","score":1} done`, wantErr: true},
		{name: "second object", input: `{"answer":"a","score":1}{"answer":"b","score":2}`, wantErr: true},
		{name: "unknown field", input: `{"answer":"a","score":1,"why":"x"}`, wantErr: true},
		{name: "wrong type", input: `{"answer":"a","score":"high"}`, wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			var got verdict
			err := DecodeStrict(tc.input, &got)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestDecodeStrictTrailingDataError(t *testing.T) {
	t.Parallel()

	var got verdict
	require.ErrorIs(t, DecodeStrict(`{"answer":"a","score":1} extra`, &got), ErrTrailingData)
}
