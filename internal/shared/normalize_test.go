package shared

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFoldSearch(t *testing.T) {
	require.Equal(t, "pao de lo", FoldSearch("Pão de Ló"))
	require.Equal(t, "acucar", FoldSearch("Açúcar"))
	require.Equal(t, "cafe", FoldSearch("CAFÉ"))
	require.Equal(t, "", FoldSearch(""))
}
