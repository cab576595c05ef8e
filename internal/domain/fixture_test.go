package domain

import (
	"os"
	"path/filepath"
	"testing"
)

const talkerSource = `#include "demo/talker.hpp"

namespace demo
{

Talker::Talker()
: Node("talker"), count_(0)
{
  publisher_ = create_publisher<std_msgs::msg::String>("chatter", 10);
}

}  // namespace demo
`

const talkerHeader = `#ifndef DEMO__TALKER_HPP_
#define DEMO__TALKER_HPP_

#include "rclcpp/rclcpp.hpp"

namespace demo
{

class Talker : public rclcpp::Node
{
public:
  Talker();
  ~Talker();

private:
  size_t count_;
};

}  // namespace demo

#endif  // DEMO__TALKER_HPP_
`

const talkerMain = `#include "demo/talker.hpp"

int main(int argc, char * argv[])
{
  rclcpp::init(argc, argv);
  rclcpp::spin(std::make_shared<demo::Talker>());
  rclcpp::shutdown();
  return 0;
}
`

// talkerWorkspace lays out a single-package workspace and returns its root
// together with the implementation, header and main paths.
func talkerWorkspace(t *testing.T) (root, impl, header, main string) {
	t.Helper()

	root = t.TempDir()
	pkg := filepath.Join(root, "src", "demo")

	impl = filepath.Join(pkg, "src", "talker.cpp")
	header = filepath.Join(pkg, "include", "demo", "talker.hpp")
	main = filepath.Join(pkg, "src", "main.cpp")

	writeFile(t, impl, talkerSource)
	writeFile(t, header, talkerHeader)
	writeFile(t, main, talkerMain)

	return root, impl, header, main
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}

	return string(data)
}
