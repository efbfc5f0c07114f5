package jni

// stubTemplate is one exported entry point. {%params%} is either empty or a
// block of indented parameter lines ending in a newline.
const stubTemplate = `#[unsafe(no_mangle)]
pub extern "C" fn {%symbol%}(
    mut env: JNIEnv,
    _: JClass,
{%params%}){%ret%} {
    {%body%}
}`

// fileTemplate is the complete lib.rs.
const fileTemplate = `{%imports%}

{%stubs%}
`

// BaseImports are the jni crate paths every generated lib.rs uses.
var BaseImports = []string{
	"jni::objects::{JClass, JString, JObject}",
	"jni::sys::{jfloat, jstring, jdouble, jint, jlong, jbyte, jshort, jchar, jboolean}",
	"jni::JNIEnv",
}
