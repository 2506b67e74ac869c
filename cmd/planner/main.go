// planner — инструмент командной строки для отправки планов
// и наблюдения за их выполнением.
//
// Использование:
//
//	planner [--json] <command> [flags]
//
// Команды:
//
//	submit  Отправить план из YAML/JSON файла
//	list    Список запусков
//	status  Состояние запуска
//	next    Задачи, готовые к запуску
//	update  Применить статусы задач
package main

import (
	"fmt"
	"os"

	"github.com/jtarchie/planner-pg/internal/cli"
)

// version задаётся через ldflags при сборке.
var version = "dev"

func main() {
	rootCmd := cli.NewRootCmd(cli.NewStore)
	rootCmd.Version = version

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
