package messaging

type ChangeTopic string

const (
	CatalogChanged ChangeTopic = "catalog_changed"
)
