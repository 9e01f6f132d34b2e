package psd

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeAndReopenResources(t *testing.T, r *ImageResources) *ImageResources {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "resources-*.bin")
	require.NoError(t, err)
	defer f.Close()

	require.NoError(t, r.Write(NewWriterFile(f)))

	rf, err := os.Open(f.Name())
	require.NoError(t, err)
	t.Cleanup(func() { rf.Close() })

	var reopened ImageResources
	require.NoError(t, reopened.Read(NewReaderFile(rf)))
	return &reopened
}

func TestImageResourcesRoundTrip(t *testing.T) {
	var r ImageResources
	r.setLayersGroupInfo([]uint16{0, 1, 1})

	reopened := writeAndReopenResources(t, &r)
	res := reopened.Get(uint16(ResIDLayersGroupInfo))
	require.NotNil(t, res)
	group, ok := res.Block.(*LayersGroupInfo)
	require.True(t, ok)
	assert.Equal(t, []uint16{0, 1, 1}, group.GroupIDs)
}

func TestImageResourcesUnknownIDFallsBackToGeneric(t *testing.T) {
	var r ImageResources
	r.Resources = map[uint16]*Resource{
		9999: {Type: "8BIM", ID: 9999, Block: &GenericImageResourceBlock{ID: 9999, Data: []byte{1, 2, 3}}},
	}
	r.order = []uint16{9999}

	reopened := writeAndReopenResources(t, &r)
	res := reopened.Get(9999)
	require.NotNil(t, res)
	block, ok := res.Block.(*GenericImageResourceBlock)
	require.True(t, ok)
	assert.Equal(t, []byte{1, 2, 3}, block.Data)
}

func TestImageResourcesEmptySection(t *testing.T) {
	var r ImageResources
	reopened := writeAndReopenResources(t, &r)
	assert.Empty(t, reopened.Resources)
}

func TestParseGuidesReportsCorrectOrientation(t *testing.T) {
	var r ImageResources
	r.Resources = map[uint16]*Resource{
		uint16(ResIDGridAndGuidesInfo): {Type: "8BIM", ID: uint16(ResIDGridAndGuidesInfo), Block: &GridAndGuidesInfo{
			Guides: []GuideEntry{
				{Location: 100, Direction: GuideHorizontal},
				{Location: 200, Direction: GuideVertical},
			},
		}},
	}

	guides, err := r.ParseGuides()
	require.NoError(t, err)
	require.Len(t, guides.Guides, 2)
	assert.True(t, guides.Guides[0].IsHorizontal)
	assert.False(t, guides.Guides[1].IsHorizontal)
}
