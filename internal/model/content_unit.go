package model

// SkipSequence 间隔序列，课程级固定常量。完美轮次把单元的间隔数推进到
// 下一档，封顶 1000；非完美轮次无条件回落到 4。
var SkipSequence = []int{4, 8, 15, 30, 100, 1000}

const DefaultSkipNumber = 4

// NextSkipNumber 返回序列中 current 的后继值，已到顶或不在序列内时取边界值
func NextSkipNumber(current int) int {
	for i, v := range SkipSequence {
		if v == current {
			if i == len(SkipSequence)-1 {
				return v
			}
			return SkipSequence[i+1]
		}
	}
	if current >= SkipSequence[len(SkipSequence)-1] {
		return SkipSequence[len(SkipSequence)-1]
	}
	return DefaultSkipNumber
}

// ContentUnit 内容单元（stitch）：围绕一小组事实的练习配方。
// 题面与干扰项的生成属于内容生成层，这里只保存不透明的引用。
// swagger:model ContentUnit
type ContentUnit struct {
	UUIDBase
	PathID        string     `gorm:"type:varchar(36);index;not null" json:"pathId"`
	Name          string     `gorm:"size:255" json:"name"`
	SkipNumber    int        `gorm:"default:4" json:"skipNumber"`
	BoundaryLevel int        `gorm:"default:2" json:"boundaryLevel"` // 无掌握数据时的默认边界等级
	Facts         []UnitFact `gorm:"foreignKey:UnitID" json:"facts"`
}

func (ContentUnit) TableName() string {
	return "content_units"
}

// Fact 课程事实登记表，内容仓库对调度器只读
// swagger:model Fact
type Fact struct {
	ID        string `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Statement string `gorm:"size:255" json:"statement"`
}

func (Fact) TableName() string {
	return "facts"
}

// UnitFact 单元与事实的关联
type UnitFact struct {
	UnitID string `gorm:"primaryKey;type:varchar(36)" json:"unitId"`
	FactID string `gorm:"primaryKey;type:varchar(64)" json:"factId"`
}

func (UnitFact) TableName() string {
	return "unit_facts"
}
