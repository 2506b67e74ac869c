// Package engine содержит ядро planner: модель дерева плана и два
// рекурсивных алгоритма над ним.
//
// Включает:
//   - plan.go    — неизменяемое дерево плана (задачи, группы, слоты)
//   - builder.go — декларативное построение дерева (Serial/Parallel/Try/...)
//   - eval.go    — свёртка статуса и вычисление готовых задач
//   - parser.go  — построение плана из декларативной PlanSpec
//
// Engine — чистая функция от (дерево плана, снимок статусов):
// он никогда не выполняет задачи и не пишет в store, только отвечает
// на вопросы "что запускать дальше" и "завершён ли план".
package engine
