package matching

import (
	"sort"
)

// Match распределяет встречи студентов с преподавателями по слотам.
// Жёсткие ограничения: слот лежит в пересечении доступности обеих сторон,
// ни одна сторона не занята дважды в одном слоте, не больше одной встречи
// на пару (студент, преподаватель). Алгоритм детерминирован: студенты
// обрабатываются по возрастанию id, из равнозначных слотов берётся
// лексикографически меньшая метка, из кандидатов-преподавателей сначала
// тот у кого меньше остаточная ёмкость.
//
// Функция чистая: не трогает вход, не делает I/O, номер запуска не знает
func Match(in Input) Result {
	st := newState(in)

	// Раунды: в каждом раунде студент получает не больше одной новой
	// встречи, чтобы дефицитная ёмкость не уходила первым студентам
	for {
		progress := false
		for _, stu := range st.students {
			if st.assignOne(stu) {
				progress = true
			}
		}
		if !progress {
			break
		}
	}

	return st.result(in.MinFaculty)
}

// state рабочее состояние одного запуска
type state struct {
	slots    []string      // отсортированный каталог слотов
	slotIdx  map[string]int
	profs    []*profState   // по возрастанию id
	profByID map[int64]*profState
	students []*studentState // по возрастанию id
}

type profState struct {
	id    int64
	avail []int           // индексы доступных слотов по возрастанию
	busy  map[int]int64   // индекс слота -> id студента
}

func (p *profState) remaining() int {
	return len(p.avail) - len(p.busy)
}

type studentState struct {
	id       int64
	prefs    []int64 // в заявленном порядке, без дублей и висячих ссылок
	avail    map[int]bool
	busy     map[int]bool
	assigned map[int64]int // id преподавателя -> индекс слота
}

func newState(in Input) *state {
	st := &state{
		slotIdx:  make(map[string]int),
		profByID: make(map[int64]*profState),
	}

	// Каталог сортируем по метке: метки "HH:MM-HH:MM" с ведущими нулями,
	// лексикографический порядок совпадает с хронологическим
	seen := make(map[string]bool)
	for _, label := range in.Slots {
		if label == "" || seen[label] {
			continue
		}
		seen[label] = true
		st.slots = append(st.slots, label)
	}
	sort.Strings(st.slots)
	for i, label := range st.slots {
		st.slotIdx[label] = i
	}

	for _, p := range in.Professors {
		if _, ok := st.profByID[p.ID]; ok {
			continue // дубликат записи, берём первую
		}
		ps := &profState{
			id:    p.ID,
			avail: st.indexSlots(p.AvailableSlots),
			busy:  make(map[int]int64),
		}
		st.profByID[p.ID] = ps
		st.profs = append(st.profs, ps)
	}
	sort.Slice(st.profs, func(i, j int) bool { return st.profs[i].id < st.profs[j].id })

	seenStu := make(map[int64]bool)
	for _, s := range in.Students {
		if seenStu[s.ID] {
			continue
		}
		seenStu[s.ID] = true

		ss := &studentState{
			id:       s.ID,
			avail:    make(map[int]bool),
			busy:     make(map[int]bool),
			assigned: make(map[int64]int),
		}
		for _, idx := range st.indexSlots(s.AvailableSlots) {
			ss.avail[idx] = true
		}

		// Висячие ссылки на отсутствующих преподавателей и дубли
		// пропускаем, остаток ограничиваем максимумом события
		seenPref := make(map[int64]bool)
		for _, profID := range s.Preferences {
			if seenPref[profID] {
				continue
			}
			seenPref[profID] = true
			if _, ok := st.profByID[profID]; !ok {
				continue
			}
			ss.prefs = append(ss.prefs, profID)
		}
		if in.MaxFaculty > 0 && len(ss.prefs) > in.MaxFaculty {
			ss.prefs = ss.prefs[:in.MaxFaculty]
		}

		st.students = append(st.students, ss)
	}
	sort.Slice(st.students, func(i, j int) bool { return st.students[i].id < st.students[j].id })

	return st
}

// indexSlots переводит метки в индексы каталога, неизвестные метки отбрасывает
func (st *state) indexSlots(labels []string) []int {
	var idxs []int
	seen := make(map[int]bool)
	for _, label := range labels {
		idx, ok := st.slotIdx[label]
		if !ok || seen[idx] {
			continue
		}
		seen[idx] = true
		idxs = append(idxs, idx)
	}
	sort.Ints(idxs)
	return idxs
}

// assignOne пытается дать студенту одну новую встречу из его списка
func (st *state) assignOne(stu *studentState) bool {
	if len(stu.assigned) >= len(stu.prefs) {
		return false
	}

	// Кандидаты: ещё не назначенные преподаватели из списка студента,
	// сначала с меньшей остаточной ёмкостью чтобы снизить голодание
	var candidates []*profState
	for _, profID := range stu.prefs {
		if _, done := stu.assigned[profID]; done {
			continue
		}
		candidates = append(candidates, st.profByID[profID])
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].remaining() < candidates[j].remaining()
	})

	for _, prof := range candidates {
		if idx, ok := st.findFreeSlot(prof, stu); ok {
			st.book(prof, stu, idx)
			return true
		}
	}

	// Прямого слота нет — пробуем одноуровневую пересадку чужой встречи
	for _, prof := range candidates {
		if st.assignWithRelocation(prof, stu) {
			return true
		}
	}

	return false
}

// findFreeSlot ищет наименьший слот из пересечения доступности,
// свободный у обеих сторон
func (st *state) findFreeSlot(prof *profState, stu *studentState) (int, bool) {
	for _, idx := range prof.avail {
		if _, taken := prof.busy[idx]; taken {
			continue
		}
		if stu.avail[idx] && !stu.busy[idx] {
			return idx, true
		}
	}
	return 0, false
}

// assignWithRelocation освобождает слот преподавателя, пересадив уже
// назначенную встречу на другое допустимое время. Глубина один уровень:
// этого хватает на практических размерах события
func (st *state) assignWithRelocation(prof *profState, stu *studentState) bool {
	for _, idx := range prof.avail {
		if !stu.avail[idx] || stu.busy[idx] {
			continue
		}
		otherID, taken := prof.busy[idx]
		if !taken {
			continue
		}

		other := st.studentByID(otherID)
		if other == nil {
			continue
		}

		// Ищем другой слот для пересадки встречи (prof, other)
		for _, alt := range prof.avail {
			if alt == idx {
				continue
			}
			if _, busy := prof.busy[alt]; busy {
				continue
			}
			if !other.avail[alt] || other.busy[alt] {
				continue
			}

			st.unbook(prof, other, idx)
			st.book(prof, other, alt)
			st.book(prof, stu, idx)
			return true
		}
	}
	return false
}

func (st *state) studentByID(id int64) *studentState {
	n := sort.Search(len(st.students), func(i int) bool { return st.students[i].id >= id })
	if n < len(st.students) && st.students[n].id == id {
		return st.students[n]
	}
	return nil
}

func (st *state) book(prof *profState, stu *studentState, idx int) {
	prof.busy[idx] = stu.id
	stu.busy[idx] = true
	stu.assigned[prof.id] = idx
}

func (st *state) unbook(prof *profState, stu *studentState, idx int) {
	delete(prof.busy, idx)
	delete(stu.busy, idx)
	delete(stu.assigned, prof.id)
}

// result собирает итог в стабильном порядке (студент, слот)
func (st *state) result(minFaculty int) Result {
	var res Result

	for _, stu := range st.students {
		type pair struct {
			profID int64
			idx    int
		}
		pairs := make([]pair, 0, len(stu.assigned))
		for profID, idx := range stu.assigned {
			pairs = append(pairs, pair{profID: profID, idx: idx})
		}
		sort.Slice(pairs, func(i, j int) bool { return pairs[i].idx < pairs[j].idx })

		for _, p := range pairs {
			res.Meetings = append(res.Meetings, Meeting{
				ProfessorID: p.profID,
				StudentID:   stu.id,
				Slot:        st.slots[p.idx],
			})
		}

		if len(stu.assigned) < minFaculty {
			us := UnderServed{
				StudentID: stu.id,
				Assigned:  len(stu.assigned),
				Required:  minFaculty,
			}
			for _, profID := range stu.prefs {
				if _, done := stu.assigned[profID]; !done {
					us.UnmetProfessors = append(us.UnmetProfessors, profID)
				}
			}
			res.UnderServed = append(res.UnderServed, us)
		}
	}

	return res
}
