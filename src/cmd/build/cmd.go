// build 是项目的构建工具：go run ./src/cmd/build <command>
package main

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/alecthomas/kingpin"
)

// 全局变量，用于存储命令行参数
var (
	customVersion string
	outputPath    string
)

func main() {
	os.Exit(RunCmd(os.Args[1:]))
}

func RunCmd(args []string) int {
	app := kingpin.New("Build tool", "Pigeon Planner build tool.")

	// dev 命令支持 --version 参数
	devCmd := app.Command("dev", "Build for development.")
	devCmd.Flag("version", "自定义版本号（用于测试数据库升级）").StringVar(&customVersion)
	devCmd.Flag("output", "输出路径").StringVar(&outputPath)
	devCmd.Action(devBuild)

	releaseCmd := app.Command("release", "Build for release.")
	releaseCmd.Flag("output", "输出路径").StringVar(&outputPath)
	releaseCmd.Action(releaseBuild)

	app.Command("test", "Run tests.").Action(goTest)
	app.Command("generate", "go generate ./... (mockgen)").Action(goGenerate)
	app.Command("clean", "清理构建产物").Action(cleanBuild)

	if _, err := app.Parse(args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func devBuild(c *kingpin.ParseContext) error {
	// 如果指定了自定义版本号，设置环境变量供 GetBuildFlags 使用
	if customVersion != "" {
		os.Setenv("APP_VERSION", customVersion)
	}
	return BuildGoBinary(true, outputPath)
}

func releaseBuild(c *kingpin.ParseContext) error {
	return BuildGoBinary(false, outputPath)
}

func goTest(c *kingpin.ParseContext) error {
	return execCommand("go", "test",
		"-tags", "release",
		"--cover",
		"-coverprofile=coverage.txt",
		"./src/...",
	)
}

func goGenerate(c *kingpin.ParseContext) error {
	return execCommand("go", "generate", "./...")
}

// cleanBuild 清理构建产物（跨平台）
func cleanBuild(c *kingpin.ParseContext) error {
	for _, path := range []string{"bin", "coverage.txt"} {
		if err := os.RemoveAll(path); err != nil {
			return fmt.Errorf("删除 %s 失败: %w", path, err)
		}
		fmt.Printf("已删除: %s\n", path)
	}
	fmt.Println("清理完成")
	return nil
}

func execCommand(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
