package models

// Tag labels posts; names are not unique-enforced
type Tag struct {
	ID   int64  `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	Name string `gorm:"type:varchar(50);not null;index:tags_ix_name;column:name" json:"name"`
}

// TableName specifies the table name for Tag
func (Tag) TableName() string {
	return "tags"
}
