package domain

// Location is a plant area served by a department.
type Location struct {
	ID         string `yaml:"id" json:"id"`
	Department string `yaml:"department" json:"department"`
	Area       string `yaml:"area" json:"area"`
}

type MachineType struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
}

type PartType struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
}

type WorkType struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
}

type PendingReason struct {
	ID     string `yaml:"id" json:"id"`
	Reason string `yaml:"reason" json:"reason"`
}

// Equipment is a machine installed at a location.
type Equipment struct {
	ID            string `yaml:"id" json:"id"`
	Machine       string `yaml:"machine" json:"machine"`
	MachineTypeID string `yaml:"machine_type" json:"machine_type"`
	LocationID    string `yaml:"location" json:"location"`
}

// Part is a replaceable component of a piece of equipment.
type Part struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	PartTypeID  string `yaml:"part_type" json:"part_type"`
	EquipmentID string `yaml:"equipment" json:"equipment"`
}
