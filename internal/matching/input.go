package matching

// Input нормализованный вход алгоритма для одного события.
// Собирается нормализатором, движок читает его как снимок и не мутирует
type Input struct {
	EventID    int64
	Slots      []string // каталог слотов события, метки "HH:MM-HH:MM"
	Professors []Professor
	Students   []Student
	MinFaculty int // минимум преподавателей на студента
	MaxFaculty int // максимум преподавателей на студента
}

type Professor struct {
	ID             int64
	AvailableSlots []string
}

type Student struct {
	ID             int64
	Preferences    []int64 // выбранные преподаватели в порядке приоритета
	AvailableSlots []string
}

// Meeting одна назначенная встреча. Номер запуска проставляет вызывающий,
// движок остаётся чистой функцией
type Meeting struct {
	ProfessorID int64
	StudentID   int64
	Slot        string
}

// UnderServed студент, получивший меньше встреч чем требует событие
type UnderServed struct {
	StudentID       int64
	Assigned        int
	Required        int
	UnmetProfessors []int64
}

// Result полный результат запуска движка
type Result struct {
	Meetings    []Meeting
	UnderServed []UnderServed
}
