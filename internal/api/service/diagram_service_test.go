package service

import (
	"fmt"
	"netmap"
	"netmap/internal/api/models"
	"netmap/internal/topology"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupDiagramTestDB(t *testing.T) {
	netmap.InitConfig("../../../.env.test")

	err := netmap.DB.AutoMigrate(&models.User{}, &models.Diagram{})
	require.NoError(t, err, "Failed to migrate diagram tables")
}

func cleanupDiagram(t *testing.T, name string) {
	netmap.DB.Unscoped().Where("name = ?", name).Delete(&models.Diagram{})
}

func uniqueDiagramName() string {
	return fmt.Sprintf("test-diagram-%d", time.Now().UnixNano())
}

func sampleDocument(t *testing.T) *topology.Document {
	mgr := topology.NewManager(netmap.Logger)

	r1, err := mgr.AddNode(topology.NodeSpec{
		Type: "router", Name: "R1",
		Endpoints: []topology.Endpoint{{Name: "Gig0/0", Type: "ethernet"}},
	})
	require.NoError(t, err)

	r2, err := mgr.AddNode(topology.NodeSpec{
		Type: "router", Name: "R2",
		Endpoints: []topology.Endpoint{{Name: "Gig0/0", Type: "ethernet"}},
	})
	require.NoError(t, err)

	_, err = mgr.CreateConnection(
		topology.EndpointRef{NodeID: r1.ID, Name: "Gig0/0"},
		topology.EndpointRef{NodeID: r2.ID, Name: "Gig0/0"},
	)
	require.NoError(t, err)

	return mgr.Serialize()
}

func TestDiagram_SaveAndLoad(t *testing.T) {
	setupDiagramTestDB(t)

	service := NewDiagramService()
	name := uniqueDiagramName()
	defer cleanupDiagram(t, name)

	doc := sampleDocument(t)

	saved, err := service.Save(name, doc, 0)
	require.NoError(t, err, "Failed to save diagram")
	assert.Equal(t, name, saved.Name)
	assert.Equal(t, 2, saved.NodeCount)
	assert.Equal(t, 1, saved.ConnectionCount)
	assert.Greater(t, saved.Size, 0)

	loaded, err := service.Load(name)
	require.NoError(t, err, "Failed to load diagram")
	assert.Equal(t, doc.Version, loaded.Version)
	assert.Len(t, loaded.Nodes, 2)
	assert.Len(t, loaded.Connections, 1)
}

func TestDiagram_SaveReplacesExisting(t *testing.T) {
	setupDiagramTestDB(t)

	service := NewDiagramService()
	name := uniqueDiagramName()
	defer cleanupDiagram(t, name)

	_, err := service.Save(name, sampleDocument(t), 0)
	require.NoError(t, err)

	// Save an empty document under the same name
	empty := topology.NewManager(netmap.Logger).Serialize()
	saved, err := service.Save(name, empty, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, saved.NodeCount)

	loaded, err := service.Load(name)
	require.NoError(t, err)
	assert.Empty(t, loaded.Nodes)
}

func TestDiagram_SaveRejectsMalformedDocument(t *testing.T) {
	setupDiagramTestDB(t)

	service := NewDiagramService()

	_, err := service.Save(uniqueDiagramName(), nil, 0)
	require.ErrorIs(t, err, topology.ErrMalformedDocument)

	_, err = service.Save(uniqueDiagramName(), &topology.Document{}, 0)
	require.ErrorIs(t, err, topology.ErrMalformedDocument)
}

func TestDiagram_LoadNotFound(t *testing.T) {
	setupDiagramTestDB(t)

	service := NewDiagramService()

	_, err := service.Load(uniqueDiagramName())
	require.ErrorIs(t, err, ErrDiagramNotFound)
}

func TestDiagram_List(t *testing.T) {
	setupDiagramTestDB(t)

	service := NewDiagramService()
	name := uniqueDiagramName()
	defer cleanupDiagram(t, name)

	_, err := service.Save(name, sampleDocument(t), 0)
	require.NoError(t, err)

	diagrams, err := service.List()
	require.NoError(t, err)

	var found bool
	for _, d := range diagrams {
		if d.Name == name {
			found = true
			assert.Equal(t, 2, d.NodeCount)
			// Listings skip the document payload
			assert.Nil(t, d.Document)
		}
	}
	assert.True(t, found, "Saved diagram should appear in listing")
}

func TestDiagram_Delete(t *testing.T) {
	setupDiagramTestDB(t)

	service := NewDiagramService()
	name := uniqueDiagramName()
	defer cleanupDiagram(t, name)

	_, err := service.Save(name, sampleDocument(t), 0)
	require.NoError(t, err)

	require.NoError(t, service.Delete(name))

	_, err = service.Load(name)
	require.ErrorIs(t, err, ErrDiagramNotFound)

	err = service.Delete(name)
	require.ErrorIs(t, err, ErrDiagramNotFound)
}

func TestDiagram_ResaveAfterDelete(t *testing.T) {
	setupDiagramTestDB(t)

	service := NewDiagramService()
	name := uniqueDiagramName()
	defer cleanupDiagram(t, name)

	_, err := service.Save(name, sampleDocument(t), 0)
	require.NoError(t, err)
	require.NoError(t, service.Delete(name))

	// Saving under a deleted name must revive it, not silently update a
	// row that reads can no longer see.
	saved, err := service.Save(name, sampleDocument(t), 0)
	require.NoError(t, err)
	assert.Equal(t, 2, saved.NodeCount)

	loaded, err := service.Load(name)
	require.NoError(t, err, "diagram saved after delete must be loadable")
	assert.Len(t, loaded.Nodes, 2)

	diagrams, err := service.List()
	require.NoError(t, err)
	var found bool
	for _, d := range diagrams {
		if d.Name == name {
			found = true
		}
	}
	assert.True(t, found, "revived diagram should appear in listing")
}
