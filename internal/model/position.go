package model

import "time"

// PathPosition 路径内容队列的占位记录。队列稀疏且有序：一个单元可以停在
// 位置 1000 而中间全部留空，跳过的空位不存任何行，所以间隔数到千级也不需要
// 预分配槽位。位置 1（若路径非空）是正在练习的单元。
// swagger:model PathPosition
type PathPosition struct {
	PathID    string    `gorm:"primaryKey;type:varchar(36);uniqueIndex:idx_path_unit,priority:1" json:"pathId"`
	Position  int       `gorm:"primaryKey;autoIncrement:false" json:"position"`
	UnitID    string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_path_unit,priority:2" json:"unitId"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (PathPosition) TableName() string {
	return "path_positions"
}
